package gridwalk

import (
	"fmt"
	"slices"
)

// CollisionPolicy selects how agents treat each other during planning.
type CollisionPolicy struct {
	// AvoidOccupied makes cells currently holding another agent impassable.
	// Only current positions count; other agents' plans are never consulted.
	AvoidOccupied bool
}

// Outcome is the result of one agent turn.
type Outcome int

const (
	// OutcomeArrived means the agent already stands on its destination.
	OutcomeArrived Outcome = iota
	// OutcomeMoved means the agent advanced one cell.
	OutcomeMoved
	// OutcomeHeld means no route exists this turn or the next cell is taken;
	// the agent keeps its cell.
	OutcomeHeld
)

func (o Outcome) String() string {
	switch o {
	case OutcomeArrived:
		return "arrived"
	case OutcomeMoved:
		return "moved"
	case OutcomeHeld:
		return "held"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText lets outcomes appear by name in JSON and logs.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText parses the names written by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "arrived":
		*o = OutcomeArrived
	case "moved":
		*o = OutcomeMoved
	case "held":
		*o = OutcomeHeld
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Agent walks toward its destination one cell per turn.
type Agent struct {
	ID   AgentID
	Name string

	position    Pos
	destination Pos
	route       []Pos
}

// NewAgent creates an agent standing on start. It does not touch any grid;
// NewScheduler records its occupancy.
func NewAgent(id AgentID, name string, start, destination Pos) *Agent {
	return &Agent{
		ID:          id,
		Name:        name,
		position:    start,
		destination: destination,
	}
}

// Position returns the cell the agent stands on.
func (a *Agent) Position() Pos { return a.position }

// Destination returns the agent's goal cell.
func (a *Agent) Destination() Pos { return a.destination }

// Route returns a copy of the most recently computed route.
func (a *Agent) Route() []Pos { return slices.Clone(a.route) }

// Arrived reports whether the agent stands on its destination.
func (a *Agent) Arrived() bool { return a.position == a.destination }

// blocked builds the search predicate for this agent under policy.
func (a *Agent) blocked(policy CollisionPolicy) BlockedFunc {
	return func(cell Cell) bool {
		if cell.Wall {
			return true
		}
		return policy.AvoidOccupied && cell.Occupant != NoAgent && cell.Occupant != a.ID
	}
}

// PlanAndStep replans from the current cell and advances at most one cell.
// The grid's search state must be clean; only the vacated and entered cells'
// occupancy changes.
//
// Without avoidance a route may pass through other agents, but the agent
// never steps onto an occupied cell: it holds until the next cell is free.
func (a *Agent) PlanAndStep(grid *Grid, policy CollisionPolicy) (Outcome, error) {
	if a.Arrived() {
		return OutcomeArrived, nil
	}

	result, err := Search(grid, a.position, a.destination, a.blocked(policy))
	if err != nil {
		return OutcomeHeld, fmt.Errorf("agent %d planning: %w", a.ID, err)
	}
	a.route = result.Path
	if !result.Found || len(result.Path) <= 1 {
		return OutcomeHeld, nil
	}

	next := result.Path[1]
	if occupant := grid.cells[grid.Index(next)].Occupant; occupant != NoAgent && occupant != a.ID {
		return OutcomeHeld, nil
	}
	grid.vacate(a.position, a.ID)
	a.position = next
	grid.occupy(a.position, a.ID)
	return OutcomeMoved, nil
}

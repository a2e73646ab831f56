package gridwalk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/pdrpinto/gridwalk/internal/ctxlog"
)

var (
	// ErrStopped is returned by Tick once the scheduler has been stopped.
	ErrStopped = errors.New("scheduler stopped")
	// ErrUnknownAgent reports an agent ID the scheduler does not manage.
	ErrUnknownAgent = errors.New("unknown agent")
)

// State is the scheduler's lifecycle state.
type State int

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}

// TickReport describes what happened during one turn.
type TickReport struct {
	Turn    int     `json:"turn"`
	Agent   AgentID `json:"agent"`
	Outcome Outcome `json:"outcome"`
	From    Pos     `json:"from"`
	To      Pos     `json:"to"`
	Route   []Pos   `json:"route,omitempty"`
}

// Scheduler gives agents turns round-robin, one move per tick.
//
// Tick, Snapshot and the other methods serialize on one mutex, so a grid is
// only ever touched by a single agent's plan-and-step at a time.
type Scheduler struct {
	mu        sync.Mutex
	grid      *Grid
	agents    []*Agent
	policy    CollisionPolicy
	turn      int
	state     State
	lastRoute []Pos
}

// NewScheduler takes ownership of grid and agents and records each agent's
// occupancy. Agents must have distinct non-zero IDs and stand on distinct,
// non-wall cells.
func NewScheduler(grid *Grid, agents []*Agent, policy CollisionPolicy) (*Scheduler, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidConfig)
	}
	seen := make(map[AgentID]bool, len(agents))
	for _, agent := range agents {
		switch {
		case agent == nil:
			return nil, fmt.Errorf("%w: nil agent", ErrInvalidConfig)
		case agent.ID == NoAgent:
			return nil, fmt.Errorf("%w: agent %q has reserved ID 0", ErrInvalidConfig, agent.Name)
		case seen[agent.ID]:
			return nil, fmt.Errorf("%w: duplicate agent ID %d", ErrInvalidConfig, agent.ID)
		case !grid.Contains(agent.position):
			return nil, fmt.Errorf("%w: agent %d start %v: %w", ErrInvalidConfig, agent.ID, agent.position, ErrOutOfBounds)
		case !grid.Contains(agent.destination):
			return nil, fmt.Errorf("%w: agent %d destination %v: %w", ErrInvalidConfig, agent.ID, agent.destination, ErrOutOfBounds)
		}
		seen[agent.ID] = true

		cell := &grid.cells[grid.Index(agent.position)]
		if cell.Wall {
			return nil, fmt.Errorf("%w: agent %d starts on a wall at %v", ErrInvalidConfig, agent.ID, agent.position)
		}
		if cell.Occupant != NoAgent {
			return nil, fmt.Errorf("%w: agents %d and %d share start %v", ErrInvalidConfig, cell.Occupant, agent.ID, agent.position)
		}
		grid.occupy(agent.position, agent.ID)
	}

	return &Scheduler{
		grid:   grid,
		agents: agents,
		policy: policy,
	}, nil
}

// Tick runs one turn: the next agent in round-robin order replans on a freshly
// reset grid and advances at most one cell.
func (s *Scheduler) Tick(ctx context.Context) (TickReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return TickReport{}, ErrStopped
	}
	if len(s.agents) == 0 {
		s.turn++
		return TickReport{Turn: s.turn}, nil
	}

	logger := ctxlog.FromContext(ctx)
	agent := s.agents[s.turn%len(s.agents)]
	from := agent.position

	s.grid.ResetSearchState()
	outcome, err := agent.PlanAndStep(s.grid, s.policy)
	if err != nil {
		return TickReport{}, err
	}
	s.turn++

	report := TickReport{
		Turn:    s.turn,
		Agent:   agent.ID,
		Outcome: outcome,
		From:    from,
		To:      agent.position,
	}
	if outcome != OutcomeArrived {
		report.Route = agent.Route()
		s.lastRoute = report.Route
	}

	switch outcome {
	case OutcomeMoved:
		logger.Debug("Agent moved.", "turn", s.turn, "agent", agent.Name, "from", from, "to", agent.position, "route_len", len(report.Route))
	case OutcomeHeld:
		logger.Debug("Agent held position, no route.", "turn", s.turn, "agent", agent.Name, "at", from)
	case OutcomeArrived:
		logger.Debug("Agent already at destination.", "turn", s.turn, "agent", agent.Name)
	}
	return report, nil
}

// Stop moves the scheduler to its terminal state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateStopped
}

// State returns the lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Turn returns the number of ticks taken so far.
func (s *Scheduler) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// AgentCount returns how many agents take turns.
func (s *Scheduler) AgentCount() int { return len(s.agents) }

// AllArrived reports whether every agent stands on its destination.
func (s *Scheduler) AllArrived() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, agent := range s.agents {
		if !agent.Arrived() {
			return false
		}
	}
	return true
}

// CheckOccupancy verifies that the occupied cells are exactly the agents'
// positions, each recorded under the right agent.
func (s *Scheduler) CheckOccupancy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := mapset.New[int]()
	for _, agent := range s.agents {
		index := s.grid.Index(agent.position)
		if positions.Has(index) {
			return fmt.Errorf("two agents stand on %v", agent.position)
		}
		positions.Put(index)
		if occupant := s.grid.cells[index].Occupant; occupant != agent.ID {
			return fmt.Errorf("cell %v records occupant %d, agent %d stands there", agent.position, occupant, agent.ID)
		}
	}
	for index, cell := range s.grid.cells {
		if cell.Occupant != NoAgent && !positions.Has(index) {
			return fmt.Errorf("cell %v records occupant %d but no agent stands there", cell.Pos(), cell.Occupant)
		}
	}
	return nil
}

// SearchStepper prepares a step-by-step search of the agent's next plan on a
// copy of the grid, leaving the live grid untouched.
func (s *Scheduler) SearchStepper(id AgentID) (*Stepper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := slices.IndexFunc(s.agents, func(agent *Agent) bool { return agent.ID == id })
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAgent, id)
	}
	agent := s.agents[index]

	grid := s.grid.Clone()
	grid.ResetSearchState()
	return NewStepper(grid, agent.position, agent.destination, agent.blocked(s.policy))
}

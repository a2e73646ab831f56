package gridwalk

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/zyedidia/generic/mapset"
)

// AgentSpec pins an agent's name, start or destination. Nil positions are
// drawn at random.
type AgentSpec struct {
	Name        string
	Start       *Pos
	Destination *Pos
}

// Config describes a simulation run.
type Config struct {
	Rows            int
	Cols            int
	WallProbability float64
	Seed            int64
	// AgentCount is the total number of agents; Agents may pin some of them.
	// When Agents is longer, its length wins.
	AgentCount    int
	AvoidOccupied bool
	Agents        []AgentSpec
}

// DefaultConfig is a 25x25 field with a quarter of the cells walled and four
// agents that avoid each other.
func DefaultConfig() Config {
	return Config{
		Rows:            25,
		Cols:            25,
		WallProbability: 0.25,
		Seed:            1,
		AgentCount:      4,
		AvoidOccupied:   true,
	}
}

// TotalAgents is the number of agents the config produces.
func (c Config) TotalAgents() int { return max(c.AgentCount, len(c.Agents)) }

// Validate reports every problem with the config, each wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Rows <= 0 || c.Cols <= 0 {
		invalid("grid dimensions must be positive, got %dx%d", c.Rows, c.Cols)
	}
	if c.WallProbability < 0 || c.WallProbability > 1 {
		invalid("wall probability %v outside [0,1]", c.WallProbability)
	}
	if c.AgentCount < 0 {
		invalid("agent count %d is negative", c.AgentCount)
	}
	if c.Rows > 0 && c.Cols > 0 && c.TotalAgents() > c.Rows*c.Cols {
		invalid("%d agents do not fit on %d cells", c.TotalAgents(), c.Rows*c.Cols)
	}

	inBounds := func(p Pos) bool { return p.Col >= 0 && p.Col < c.Cols && p.Row >= 0 && p.Row < c.Rows }
	starts := make(map[Pos]int)
	destinations := make(map[Pos]int)
	for i, spec := range c.Agents {
		if spec.Start != nil {
			if !inBounds(*spec.Start) {
				invalid("agent %d start %v: %w", i+1, *spec.Start, ErrOutOfBounds)
			} else if other, ok := starts[*spec.Start]; ok {
				invalid("agents %d and %d share start %v", other, i+1, *spec.Start)
			} else {
				starts[*spec.Start] = i + 1
			}
		}
		if spec.Destination != nil {
			if !inBounds(*spec.Destination) {
				invalid("agent %d destination %v: %w", i+1, *spec.Destination, ErrOutOfBounds)
			} else if other, ok := destinations[*spec.Destination]; ok {
				invalid("agents %d and %d share destination %v", other, i+1, *spec.Destination)
			} else {
				destinations[*spec.Destination] = i + 1
			}
		}
	}
	return errors.Join(errs...)
}

// NewSimulation builds the grid and agents described by cfg and returns a
// scheduler ready to tick. The same config always yields the same world.
//
// Starts are distinct, destinations are distinct, and neither is ever a wall.
func NewSimulation(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	grid, err := NewGrid(cfg.Rows, cfg.Cols, cfg.WallProbability, rng)
	if err != nil {
		return nil, err
	}

	total := cfg.TotalAgents()
	specs := make([]AgentSpec, total)
	copy(specs, cfg.Agents)

	// Pinned cells are reserved before any random draw.
	usedStarts := mapset.New[int]()
	usedDestinations := mapset.New[int]()
	for _, spec := range specs {
		if spec.Start != nil {
			usedStarts.Put(grid.Index(*spec.Start))
		}
		if spec.Destination != nil {
			usedDestinations.Put(grid.Index(*spec.Destination))
		}
	}
	startPool := newCellPool(rng.Perm(len(grid.cells)), usedStarts)
	destinationPool := newCellPool(rng.Perm(len(grid.cells)), usedDestinations)

	agents := make([]*Agent, 0, total)
	for i, spec := range specs {
		var start, destination Pos
		if spec.Start != nil {
			start = *spec.Start
		} else {
			start = grid.PosOf(startPool.next())
		}
		if spec.Destination != nil {
			destination = *spec.Destination
		} else {
			destination = grid.PosOf(destinationPool.next())
		}
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("agent-%d", i+1)
		}

		// ClearWall cannot fail here: both positions were validated or drawn from the grid.
		_ = grid.ClearWall(start)
		_ = grid.ClearWall(destination)
		agents = append(agents, NewAgent(AgentID(i+1), name, start, destination))
	}

	return NewScheduler(grid, agents, CollisionPolicy{AvoidOccupied: cfg.AvoidOccupied})
}

// cellPool hands out shuffled cell indices, skipping reserved ones.
type cellPool struct {
	order    []int
	cursor   int
	reserved mapset.Set[int]
}

func newCellPool(order []int, reserved mapset.Set[int]) *cellPool {
	return &cellPool{order: order, reserved: reserved}
}

func (p *cellPool) next() int {
	for p.cursor < len(p.order) {
		index := p.order[p.cursor]
		p.cursor++
		if !p.reserved.Has(index) {
			p.reserved.Put(index)
			return index
		}
	}
	// Validate guarantees enough cells; reaching this is a bug.
	panic("gridwalk: cell pool exhausted")
}

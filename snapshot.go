package gridwalk

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// CellView is the read-only drawing state of one cell.
type CellView struct {
	Col         int     `json:"col"`
	Row         int     `json:"row"`
	Wall        bool    `json:"wall,omitempty"`
	Occupant    AgentID `json:"occupant,omitempty"`
	OnRoute     bool    `json:"on_route,omitempty"`
	Destination bool    `json:"destination,omitempty"`
}

// AgentView is the read-only state of one agent.
type AgentView struct {
	ID          AgentID `json:"id"`
	Name        string  `json:"name"`
	Position    Pos     `json:"position"`
	Destination Pos     `json:"destination"`
	Route       []Pos   `json:"route,omitempty"`
	Arrived     bool    `json:"arrived"`
}

// Snapshot is a consistent copy of the simulation for presentation layers.
// Cells are in row-major order; Route is the route computed on the latest tick.
type Snapshot struct {
	Turn   int         `json:"turn"`
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Cells  []CellView  `json:"cells"`
	Agents []AgentView `json:"agents"`
	Route  []Pos       `json:"route,omitempty"`
}

// At returns the view of the cell at p.
func (s Snapshot) At(p Pos) (CellView, bool) {
	if p.Col < 0 || p.Col >= s.Cols || p.Row < 0 || p.Row >= s.Rows {
		return CellView{}, false
	}
	return s.Cells[p.Row*s.Cols+p.Col], true
}

// Snapshot copies the current grid and agent state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	onRoute := mapset.New[int]()
	for _, p := range s.lastRoute {
		onRoute.Put(s.grid.Index(p))
	}
	destinations := mapset.New[int]()
	agents := make([]AgentView, 0, len(s.agents))
	for _, agent := range s.agents {
		destinations.Put(s.grid.Index(agent.destination))
		agents = append(agents, AgentView{
			ID:          agent.ID,
			Name:        agent.Name,
			Position:    agent.position,
			Destination: agent.destination,
			Route:       agent.Route(),
			Arrived:     agent.Arrived(),
		})
	}

	cells := make([]CellView, len(s.grid.cells))
	for index, cell := range s.grid.cells {
		cells[index] = CellView{
			Col:         cell.Col,
			Row:         cell.Row,
			Wall:        cell.Wall,
			Occupant:    cell.Occupant,
			OnRoute:     onRoute.Has(index),
			Destination: destinations.Has(index),
		}
	}

	return Snapshot{
		Turn:   s.turn,
		Rows:   s.grid.rows,
		Cols:   s.grid.cols,
		Cells:  cells,
		Agents: agents,
		Route:  slices.Clone(s.lastRoute),
	}
}

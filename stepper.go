package gridwalk

import (
	"container/heap"
	"slices"

	"github.com/pdrpinto/gridwalk/internal/route"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current   Pos   `json:"current"`
	Open      []Pos `json:"open,omitempty"`
	Closed    []Pos `json:"closed,omitempty"`
	Done      bool  `json:"done"`
	Found     bool  `json:"found"`
	Path      []Pos `json:"path,omitempty"`
	StepIndex int   `json:"step"`
}

// Stepper runs the search one expansion at a time.
type Stepper struct {
	grid      *Grid
	goal      int
	isBlocked BlockedFunc
	heuristic Heuristic

	openSet PriorityQueue
	closed  []int
	current int

	stepCount int
	done      bool
	found     bool
	path      []int
}

// NewStepper seeds the open set with start. It marks the grid as searched, so
// the grid must be reset before another search.
func NewStepper(
	grid *Grid,
	start Pos,
	goal Pos,
	isBlocked BlockedFunc,
	options ...Option,
) (*Stepper, error) {
	if err := validateEndpoints(grid, start, goal); err != nil {
		return nil, err
	}

	// --- Apply options ---
	searchOptions := Options{Heuristic: Manhattan}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.Heuristic == nil {
		searchOptions.Heuristic = Manhattan
	}
	if isBlocked == nil {
		isBlocked = WallsOnly
	}

	s := &Stepper{
		grid:      grid,
		goal:      grid.Index(goal),
		isBlocked: isBlocked,
		heuristic: searchOptions.Heuristic,
		openSet:   PriorityQueue{grid: grid},
		current:   grid.Index(start),
	}
	grid.dirty = true

	startIndex := grid.Index(start)
	startCell := &grid.cells[startIndex]
	startCell.G = 0
	startCell.H = s.heuristic(start, goal)
	startCell.F = startCell.G + startCell.H
	startCell.CameFrom = noCell
	startCell.tag = tagOpen
	heap.Push(&s.openSet, startIndex)

	return s, nil
}

// Step advances the search by one node expansion and returns a snapshot
func (s *Stepper) Step() StepSnapshot {
	if !s.done {
		s.expand()
	}
	return s.snapshot()
}

// Done reports whether the search has finished.
func (s *Stepper) Done() bool { return s.done }

// Result returns the outcome so far; Found is false until the goal is expanded.
func (s *Stepper) Result() Result { return s.result() }

func (s *Stepper) expand() {
	if s.openSet.Len() == 0 {
		s.done = true
		return
	}

	s.stepCount++
	cells := s.grid.cells
	currentIndex := heap.Pop(&s.openSet).(int)
	current := &cells[currentIndex]
	current.tag = tagClosed
	s.closed = append(s.closed, currentIndex)
	s.current = currentIndex

	// Goal check
	if currentIndex == s.goal {
		s.done = true
		s.found = true
		s.path = route.Reconstruct(func(index int) int { return cells[index].CameFrom }, currentIndex, len(cells))
		return
	}

	goal := s.grid.PosOf(s.goal)
	for _, neighborIndex := range s.grid.adjacency[currentIndex] {
		neighbor := &cells[neighborIndex]
		if neighbor.tag == tagClosed || s.isBlocked(*neighbor) {
			continue
		}
		tentativeG := current.G + 1
		if neighbor.tag == tagOpen && tentativeG >= neighbor.G {
			continue
		}
		neighbor.CameFrom = currentIndex
		neighbor.G = tentativeG
		neighbor.H = s.heuristic(neighbor.Pos(), goal)
		neighbor.F = neighbor.G + neighbor.H
		if neighbor.tag == tagOpen {
			heap.Fix(&s.openSet, neighbor.heapIndex)
		} else {
			neighbor.tag = tagOpen
			heap.Push(&s.openSet, neighborIndex)
		}
	}
}

func (s *Stepper) result() Result {
	res := Result{ExpandedNodes: s.stepCount, Found: s.found}
	if s.found {
		res.Path = s.positions(s.path)
		res.TotalCost = s.grid.cells[s.goal].G
	}
	return res
}

func (s *Stepper) snapshot() StepSnapshot {
	open := slices.Clone(s.openSet.indices)
	slices.Sort(open)
	snap := StepSnapshot{
		Current:   s.grid.PosOf(s.current),
		Open:      s.positions(open),
		Closed:    s.positions(s.closed),
		Done:      s.done,
		Found:     s.found,
		StepIndex: s.stepCount,
	}
	if s.found {
		snap.Path = s.positions(s.path)
	}
	return snap
}

func (s *Stepper) positions(indices []int) []Pos {
	if len(indices) == 0 {
		return nil
	}
	out := make([]Pos, len(indices))
	for i, index := range indices {
		out[i] = s.grid.PosOf(index)
	}
	return out
}

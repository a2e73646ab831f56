package gridwalk

import (
	"errors"
	"fmt"
)

// ErrStaleSearchState reports a search started on a grid whose bookkeeping
// still holds a previous search. Call Grid.ResetSearchState first.
var ErrStaleSearchState = errors.New("grid search state not reset since previous search")

// BlockedFunc decides whether a cell may be entered during a search.
type BlockedFunc func(cell Cell) bool

// WallsOnly blocks walls and nothing else.
func WallsOnly(cell Cell) bool { return cell.Wall }

// Heuristic returns the estimated cost from one position to another.
type Heuristic func(from Pos, to Pos) int

// Result contains the outcome of a search
type Result struct {
	Path          []Pos
	TotalCost     int
	ExpandedNodes int
	Found         bool
}

// Options defines parameters for the search.
type Options struct {
	Heuristic Heuristic
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithHeuristic replaces the Manhattan estimate. It must stay admissible for
// the returned routes to be shortest.
func WithHeuristic(heuristic Heuristic) Option {
	return func(options *Options) { options.Heuristic = heuristic }
}

// Search runs A* from start to goal over grid.
//
// Cells for which isBlocked returns true are never entered; a nil predicate
// means WallsOnly. An unreachable goal is not an error: the Result simply has
// Found == false. When several open cells share the lowest F, the one with the
// lowest H wins, then the lowest row-major index, so equal-cost routes are
// chosen deterministically.
//
// Search writes its bookkeeping into the grid's cells; the grid must be reset
// before the next search.
func Search(
	grid *Grid,
	start Pos,
	goal Pos,
	isBlocked BlockedFunc,
	options ...Option,
) (Result, error) {
	stepper, err := NewStepper(grid, start, goal, isBlocked, options...)
	if err != nil {
		return Result{}, err
	}
	for !stepper.done {
		stepper.expand()
	}
	return stepper.result(), nil
}

func validateEndpoints(grid *Grid, start, goal Pos) error {
	if grid == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidConfig)
	}
	if !grid.Contains(start) {
		return fmt.Errorf("%w: start %v", ErrOutOfBounds, start)
	}
	if !grid.Contains(goal) {
		return fmt.Errorf("%w: goal %v", ErrOutOfBounds, goal)
	}
	if grid.dirty {
		return ErrStaleSearchState
	}
	return nil
}

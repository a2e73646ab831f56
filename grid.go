package gridwalk

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrInvalidConfig reports grid or simulation parameters that can never work.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrOutOfBounds reports a position outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")
)

// Pos addresses a cell by column and row.
type Pos struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Col, p.Row) }

// AgentID identifies an agent. The zero value means "no agent".
type AgentID int

// NoAgent marks an unoccupied cell.
const NoAgent AgentID = 0

// noCell is the CameFrom value of a cell without predecessor.
const noCell = -1

type searchTag uint8

const (
	tagNone searchTag = iota
	tagOpen
	tagClosed
)

// Cell is one unit of the grid.
type Cell struct {
	Col, Row int
	Wall     bool
	Occupant AgentID

	// Search bookkeeping, valid only for the current search.
	G, H, F  int
	CameFrom int // flat index of the predecessor, -1 for none

	tag       searchTag
	heapIndex int
}

// Pos returns the cell's coordinates.
func (c Cell) Pos() Pos { return Pos{Col: c.Col, Row: c.Row} }

// Grid is a fixed rows x cols field of cells with static 4-way adjacency.
type Grid struct {
	rows, cols int
	cells      []Cell
	adjacency  [][]int
	// dirty is set by a search and cleared by ResetSearchState.
	dirty bool
}

// NewGrid builds a grid where every cell is independently a wall with the
// given probability, drawn from rng.
func NewGrid(rows, cols int, wallProbability float64, rng *rand.Rand) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrInvalidConfig, rows, cols)
	}
	if wallProbability < 0 || wallProbability > 1 {
		return nil, fmt.Errorf("%w: wall probability %v outside [0,1]", ErrInvalidConfig, wallProbability)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}

	grid := &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			grid.cells[row*cols+col] = Cell{
				Col:       col,
				Row:       row,
				Wall:      rng.Float64() < wallProbability,
				CameFrom:  noCell,
				heapIndex: -1,
			}
		}
	}
	grid.buildAdjacency()
	return grid, nil
}

// buildAdjacency computes the in-bounds orthogonal neighbours of every cell once.
func (g *Grid) buildAdjacency() {
	g.adjacency = make([][]int, len(g.cells))
	for index := range g.cells {
		col, row := index%g.cols, index/g.cols
		neighbors := make([]int, 0, 4)
		if col > 0 {
			neighbors = append(neighbors, index-1)
		}
		if col < g.cols-1 {
			neighbors = append(neighbors, index+1)
		}
		if row > 0 {
			neighbors = append(neighbors, index-g.cols)
		}
		if row < g.rows-1 {
			neighbors = append(neighbors, index+g.cols)
		}
		g.adjacency[index] = neighbors
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Contains reports whether p lies on the grid.
func (g *Grid) Contains(p Pos) bool {
	return p.Col >= 0 && p.Col < g.cols && p.Row >= 0 && p.Row < g.rows
}

// Index returns the flat, row-major index of p. p must be on the grid.
func (g *Grid) Index(p Pos) int { return p.Row*g.cols + p.Col }

// PosOf is the inverse of Index.
func (g *Grid) PosOf(index int) Pos { return Pos{Col: index % g.cols, Row: index / g.cols} }

// Cell returns a copy of the cell at p.
func (g *Grid) Cell(p Pos) (Cell, bool) {
	if !g.Contains(p) {
		return Cell{}, false
	}
	return g.cells[g.Index(p)], true
}

// Neighbors returns the orthogonally adjacent positions of p.
func (g *Grid) Neighbors(p Pos) []Pos {
	if !g.Contains(p) {
		return nil
	}
	adjacent := g.adjacency[g.Index(p)]
	out := make([]Pos, 0, len(adjacent))
	for _, index := range adjacent {
		out = append(out, g.PosOf(index))
	}
	return out
}

// ClearWall makes the cell at p traversable.
func (g *Grid) ClearWall(p Pos) error {
	if !g.Contains(p) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	g.cells[g.Index(p)].Wall = false
	return nil
}

// Heuristic is the Manhattan distance, admissible and consistent for unit
// cost 4-way movement.
func (g *Grid) Heuristic(a, b Pos) int { return Manhattan(a, b) }

// Manhattan returns |a.Col-b.Col| + |a.Row-b.Row|.
func Manhattan(a, b Pos) int {
	return abs(a.Col-b.Col) + abs(a.Row-b.Row)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ResetSearchState clears every cell's search bookkeeping. Idempotent.
func (g *Grid) ResetSearchState() {
	for i := range g.cells {
		cell := &g.cells[i]
		cell.G, cell.H, cell.F = 0, 0, 0
		cell.CameFrom = noCell
		cell.tag = tagNone
		cell.heapIndex = -1
	}
	g.dirty = false
}

// Clone returns a deep copy. Adjacency is immutable and shared.
func (g *Grid) Clone() *Grid {
	clone := &Grid{
		rows:      g.rows,
		cols:      g.cols,
		cells:     make([]Cell, len(g.cells)),
		adjacency: g.adjacency,
		dirty:     g.dirty,
	}
	copy(clone.cells, g.cells)
	return clone
}

// vacate clears p only if it still records id as its occupant.
func (g *Grid) vacate(p Pos, id AgentID) {
	cell := &g.cells[g.Index(p)]
	if cell.Occupant == id {
		cell.Occupant = NoAgent
	}
}

func (g *Grid) occupy(p Pos, id AgentID) {
	g.cells[g.Index(p)].Occupant = id
}

package gridwalk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// openGrid returns a wall-free grid with the given walls placed.
func openGrid(t *testing.T, rows, cols int, walls ...Pos) *Grid {
	t.Helper()
	grid, err := NewGrid(rows, cols, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for _, p := range walls {
		require.True(t, grid.Contains(p), "wall %v off grid", p)
		grid.cells[grid.Index(p)].Wall = true
	}
	return grid
}

// randomGrid returns a seeded grid with the given wall density.
func randomGrid(t *testing.T, rows, cols int, density float64, seed int64) (*Grid, *rand.Rand) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	grid, err := NewGrid(rows, cols, density, rng)
	require.NoError(t, err)
	return grid, rng
}

// bfsDistance is the brute-force shortest edge count from start to goal
// avoiding walls, or -1 when unreachable.
func bfsDistance(grid *Grid, start, goal Pos) int {
	dist := make([]int, len(grid.cells))
	for i := range dist {
		dist[i] = -1
	}
	startIndex := grid.Index(start)
	dist[startIndex] = 0
	queue := []int{startIndex}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == grid.Index(goal) {
			return dist[current]
		}
		for _, next := range grid.adjacency[current] {
			if dist[next] >= 0 || grid.cells[next].Wall {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

// isAdjacent reports whether a and b are orthogonal neighbours.
func isAdjacent(a, b Pos) bool { return Manhattan(a, b) == 1 }

func pos(col, row int) Pos { return Pos{Col: col, Row: row} }

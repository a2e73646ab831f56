// Package route rebuilds search routes from arena back-pointers.
package route

// Reconstruct follows cameFrom from goal back to a node without predecessor
// (cameFrom returns a negative index) and returns the indices in start-to-goal
// order. The walk is bounded by limit to survive a corrupted chain.
func Reconstruct(cameFrom func(index int) int, goal int, limit int) []int {
	path := []int{goal}
	current := goal
	for steps := 0; steps < limit; steps++ {
		previous := cameFrom(current)
		if previous < 0 {
			break
		}
		path = append(path, previous)
		current = previous
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

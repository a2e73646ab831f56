package gridwalk

// PriorityQueue is the open set: flat cell indices ordered by F, then H, then
// index. Each cell records its slot so a relaxed cell can be fixed in place.
type PriorityQueue struct {
	grid    *Grid
	indices []int
}

func (queue PriorityQueue) Len() int { return len(queue.indices) }

func (queue PriorityQueue) Less(i, j int) bool {
	a := &queue.grid.cells[queue.indices[i]]
	b := &queue.grid.cells[queue.indices[j]]
	if a.F != b.F {
		return a.F < b.F
	}
	if a.H != b.H {
		return a.H < b.H
	}
	return queue.indices[i] < queue.indices[j]
}

func (queue PriorityQueue) Swap(i, j int) {
	queue.indices[i], queue.indices[j] = queue.indices[j], queue.indices[i]
	queue.grid.cells[queue.indices[i]].heapIndex = i
	queue.grid.cells[queue.indices[j]].heapIndex = j
}

func (queue *PriorityQueue) Push(x any) {
	index := x.(int)
	queue.grid.cells[index].heapIndex = len(queue.indices)
	queue.indices = append(queue.indices, index)
}

func (queue *PriorityQueue) Pop() any {
	n := len(queue.indices)
	index := queue.indices[n-1]
	queue.indices = queue.indices[:n-1]
	queue.grid.cells[index].heapIndex = -1
	return index
}

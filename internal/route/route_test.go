package route

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReconstruct_FollowsChainAndReverses(t *testing.T) {
	// 3 <- 2 <- 7 <- 5, 5 has no predecessor
	back := map[int]int{3: 2, 2: 7, 7: 5}
	cameFrom := func(index int) int {
		if previous, ok := back[index]; ok {
			return previous
		}
		return -1
	}

	got := Reconstruct(cameFrom, 3, 10)
	if diff := cmp.Diff([]int{5, 7, 2, 3}, got); diff != "" {
		t.Errorf("Reconstruct mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstruct_SingleNode(t *testing.T) {
	got := Reconstruct(func(int) int { return -1 }, 4, 10)
	if diff := cmp.Diff([]int{4}, got); diff != "" {
		t.Errorf("Reconstruct mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstruct_StopsOnCycle(t *testing.T) {
	// 1 <-> 0 would loop forever without the limit.
	cameFrom := func(index int) int { return 1 - index }
	got := Reconstruct(cameFrom, 0, 3)
	if len(got) != 4 {
		t.Errorf("expected limit+1 entries, got %d", len(got))
	}
}

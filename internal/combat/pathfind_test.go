package combat

import (
	"testing"

	"github.com/autobattle/roomserver/internal/hexgrid"
)

func TestPathfindAlreadyInRangeNoMove(t *testing.T) {
	step, moved := pathfind(hexgrid.Coord{2, 2}, hexgrid.Coord{2, 3}, 1, nil)
	if moved {
		t.Fatalf("expected no move when already in range, got step %v", step)
	}
}

func TestPathfindMovesCloser(t *testing.T) {
	start := hexgrid.Coord{0, 0}
	goal := hexgrid.Coord{4, 0}
	step, ok := pathfind(start, goal, 1, map[hexgrid.Coord]bool{})
	if !ok {
		t.Fatalf("expected a path to exist on an open board")
	}
	if hexgrid.Distance(step, goal) >= hexgrid.Distance(start, goal) {
		t.Fatalf("step %v did not get closer to goal %v than start %v", step, goal, start)
	}
}

func TestPathfindUnreachableReturnsFalseatAllBlocked(t *testing.T) {
	start := hexgrid.Coord{0, 0}
	goal := hexgrid.Coord{4, 7}
	blocked := map[hexgrid.Coord]bool{}
	for _, n := range hexgrid.Neighbors(start) {
		blocked[n] = true
	}
	_, ok := pathfind(start, goal, 1, blocked)
	if ok {
		t.Fatalf("expected no path when every neighbor of start is blocked")
	}
}

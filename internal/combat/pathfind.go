package combat

import (
	"container/heap"
	"math"

	"github.com/autobattle/roomserver/internal/hexgrid"
)

// pathfind runs A* from start toward any cell within attackRange hex tiles
// of goal, treating every coordinate in blocked as impassable. It returns
// the single next step to take, or ok=false if no path exists (the caller
// increments the unit's stuck counter in that case). The heuristic is hex
// distance to goal plus a 0.01*|dx| tiebreak that prefers straight columns
// over diagonal drift (spec §4.4).
func pathfind(start, goal hexgrid.Coord, attackRange int, blocked map[hexgrid.Coord]bool) (hexgrid.Coord, bool) {
	if hexgrid.Distance(start, goal) <= attackRange {
		return start, false // already in range, no move needed
	}

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &pathNode{coord: start, g: 0, f: heuristic(start, goal)})

	cameFrom := map[hexgrid.Coord]hexgrid.Coord{}
	gScore := map[hexgrid.Coord]float64{start: 0}
	visited := map[hexgrid.Coord]bool{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if visited[current.coord] {
			continue
		}
		visited[current.coord] = true

		if hexgrid.Distance(current.coord, goal) <= attackRange {
			return firstStep(start, current.coord, cameFrom), true
		}

		for _, n := range hexgrid.Neighbors(current.coord) {
			if !hexgrid.InBounds(n, arenaWidth, arenaHeight) {
				continue
			}
			if blocked[n] {
				continue
			}
			tentative := gScore[current.coord] + 1
			if existing, ok := gScore[n]; ok && tentative >= existing {
				continue
			}
			gScore[n] = tentative
			cameFrom[n] = current.coord
			heap.Push(open, &pathNode{coord: n, g: tentative, f: tentative + heuristic(n, goal)})
		}
	}
	return hexgrid.Coord{}, false
}

func heuristic(a, goal hexgrid.Coord) float64 {
	return float64(hexgrid.Distance(a, goal)) + 0.01*math.Abs(float64(goal.X-a.X))
}

// firstStep walks cameFrom back from dest to start and returns the step
// taken immediately after start.
func firstStep(start, dest hexgrid.Coord, cameFrom map[hexgrid.Coord]hexgrid.Coord) hexgrid.Coord {
	if dest == start {
		return start
	}
	cur := dest
	for {
		prev, ok := cameFrom[cur]
		if !ok || prev == start {
			return cur
		}
		cur = prev
	}
}

type pathNode struct {
	coord hexgrid.Coord
	g, f  float64
	index int
}

type openSet []*pathNode

func (s openSet) Len() int            { return len(s) }
func (s openSet) Less(i, j int) bool   { return s[i].f < s[j].f }
func (s openSet) Swap(i, j int)        { s[i], s[j] = s[j], s[i]; s[i].index, s[j].index = i, j }
func (s *openSet) Push(x interface{}) {
	n := x.(*pathNode)
	n.index = len(*s)
	*s = append(*s, n)
}
func (s *openSet) Pop() interface{} {
	old := *s
	n := len(old)
	item := old[n-1]
	*s = old[:n-1]
	return item
}

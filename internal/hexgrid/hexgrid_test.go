package hexgrid

import "testing"

func TestDistanceSameCellIsZero(t *testing.T) {
	if d := Distance(Coord{2, 2}, Coord{2, 2}); d != 0 {
		t.Fatalf("distance = %d, want 0", d)
	}
}

func TestDistanceAdjacentIsOne(t *testing.T) {
	c := Coord{2, 2}
	for _, n := range Neighbors(c) {
		if d := Distance(c, n); d != 1 {
			t.Fatalf("distance(%v,%v) = %d, want 1", c, n, d)
		}
	}
}

func TestNeighborTablesDifferByParity(t *testing.T) {
	even := Neighbors(Coord{3, 2})
	odd := Neighbors(Coord{3, 3})
	same := 0
	for _, e := range even {
		for _, o := range odd {
			if e == o {
				same++
			}
		}
	}
	if same == len(even) {
		t.Fatalf("even- and odd-row neighbor sets must differ, got identical sets")
	}
}

func TestMirrorPlayerTwoFacesFrontRanks(t *testing.T) {
	// Each player's front rank (row 3) must end up adjacent in y to the
	// other's across the midline; row 0 on each side sits at the far ends.
	p1Back := LocalPlayerOne(Coord{2, 0})
	p2Back := MirrorPlayerTwo(Coord{2, 0}, 4)
	if p2Back.Y != 7 {
		t.Fatalf("p2 back rank mirrored y = %d, want 7", p2Back.Y)
	}
	if diff := p2Back.Y - p1Back.Y; diff != 7 {
		t.Fatalf("expected the two back ranks at opposite ends of the 8-row field, got p1=%d p2=%d", p1Back.Y, p2Back.Y)
	}

	p1Front := LocalPlayerOne(Coord{2, 3})
	p2Front := MirrorPlayerTwo(Coord{2, 3}, 4)
	if p1Front.Y != 3 || p2Front.Y != 4 {
		t.Fatalf("front ranks should meet at the midline (y=3,4), got p1=%d p2=%d", p1Front.Y, p2Front.Y)
	}
}

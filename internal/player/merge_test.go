package player

import "testing"

func newTestPlayer() *Player {
	return NewPlayer("p1", "Tester", 0)
}

func benchUnit(p *Player, template string, star int) *UnitInstance {
	u := &UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: template, Star: star}
	p.AddToBench(u)
	return u
}

func TestMergeCheckCollapsesTriple(t *testing.T) {
	p := newTestPlayer()
	benchUnit(p, "footman", 1)
	benchUnit(p, "footman", 1)
	third := benchUnit(p, "footman", 1)

	MergeCheck(p, third.InstanceID)

	if got := p.BenchCount(); got != 1 {
		t.Fatalf("bench count = %d, want 1", got)
	}
	var survivor *UnitInstance
	for _, u := range p.Bench {
		if u != nil {
			survivor = u
		}
	}
	if survivor == nil || survivor.Star != 2 {
		t.Fatalf("expected one surviving 2-star instance, got %+v", survivor)
	}
}

func TestMergeCheckChainsToThreeStar(t *testing.T) {
	p := newTestPlayer()

	// First triple -> one 2-star.
	benchUnit(p, "footman", 1)
	benchUnit(p, "footman", 1)
	third := benchUnit(p, "footman", 1)
	MergeCheck(p, third.InstanceID)

	// Second triple -> a second 2-star.
	benchUnit(p, "footman", 1)
	benchUnit(p, "footman", 1)
	sixth := benchUnit(p, "footman", 1)
	MergeCheck(p, sixth.InstanceID)

	// Third triple -> a third 2-star; now three 2-stars exist, which
	// should immediately chain-merge into one 3-star.
	benchUnit(p, "footman", 1)
	benchUnit(p, "footman", 1)
	ninth := benchUnit(p, "footman", 1)
	MergeCheck(p, ninth.InstanceID)

	if got := p.BenchCount(); got != 1 {
		t.Fatalf("bench count = %d, want 1 (all consumed into the 3-star)", got)
	}
	if u, ok := p.FindInstance(ninth.InstanceID); !ok || u.Star != 3 {
		t.Fatalf("expected the surviving instance to be a 3-star, got %+v ok=%v", u, ok)
	}
}

func TestMergeCheckPrefersBoardResident(t *testing.T) {
	p := newTestPlayer()
	boardUnit := &UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: "footman", Star: 1}
	p.Board[0][0] = boardUnit
	benchUnit(p, "footman", 1)
	third := benchUnit(p, "footman", 1)

	MergeCheck(p, third.InstanceID)

	kept, ok := p.FindInstance(boardUnit.InstanceID)
	if !ok || !p.IsOnBoard(kept.InstanceID) || kept.Star != 2 {
		t.Fatalf("expected the board-resident instance to survive and upgrade, got %+v ok=%v", kept, ok)
	}
	if p.BenchCount() != 0 {
		t.Fatalf("bench should be emptied, got %d", p.BenchCount())
	}
}

func TestMergeCheckNoOpBelowThree(t *testing.T) {
	p := newTestPlayer()
	benchUnit(p, "footman", 1)
	second := benchUnit(p, "footman", 1)

	MergeCheck(p, second.InstanceID)

	if got := p.BenchCount(); got != 2 {
		t.Fatalf("bench count = %d, want 2 (no merge with only two copies)", got)
	}
}

func TestMergeCheckStopsAtThreeStar(t *testing.T) {
	p := newTestPlayer()
	benchUnit(p, "footman", 3)
	benchUnit(p, "footman", 3)
	third := benchUnit(p, "footman", 3)

	MergeCheck(p, third.InstanceID)

	if got := p.BenchCount(); got != 3 {
		t.Fatalf("bench count = %d, want 3 (star cap reached, no further merge)", got)
	}
}

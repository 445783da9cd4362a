package merchant

import "testing"

func TestPickOrderByAscendingHealthThenSlot(t *testing.T) {
	// S4: health (10,20,15), slots (0,1,2) -> order [p0, p2, p1].
	players := []PlayerHealthSlot{
		{PlayerID: "p0", Health: 10, SlotIndex: 0},
		{PlayerID: "p1", Health: 20, SlotIndex: 1},
		{PlayerID: "p2", Health: 15, SlotIndex: 2},
	}
	e := NewEngine(players, samplePairs())

	want := []string{"p0", "p2", "p1"}
	for _, w := range want {
		got, ok := e.CurrentPicker()
		if !ok || got != w {
			t.Fatalf("current picker = %v (ok=%v), want %v", got, ok, w)
		}
		if _, err := e.Pick(got, e.pairs[0].ID); err != nil {
			// pick whatever is unpicked next
			for _, pr := range e.pairs {
				if !pr.Taken {
					if _, err := e.Pick(got, pr.ID); err != nil {
						t.Fatalf("pick failed: %v", err)
					}
					break
				}
			}
		}
	}
	if !e.Done() {
		t.Fatalf("expected engine done after all three pickers picked")
	}
}

func TestPickRejectsOutOfTurn(t *testing.T) {
	players := []PlayerHealthSlot{
		{PlayerID: "p0", Health: 10, SlotIndex: 0},
		{PlayerID: "p1", Health: 20, SlotIndex: 1},
	}
	e := NewEngine(players, samplePairs())
	if _, err := e.Pick("p1", e.pairs[0].ID); err != ErrNotYourTurn {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
}

func TestAutoPickPrefersGold(t *testing.T) {
	players := []PlayerHealthSlot{{PlayerID: "p0", Health: 10, SlotIndex: 0}}
	pairs := []*Pair{
		{ID: "a", Type: PairItemItem, A: Reward{ItemID: "x"}, B: Reward{ItemID: "y"}},
		{ID: "b", Type: PairGoldItem, A: Reward{Gold: 6}, B: Reward{ItemID: "z"}},
	}
	e := NewEngine(players, pairs)

	picked, err := e.AutoPick()
	if err != nil {
		t.Fatalf("AutoPick error: %v", err)
	}
	if picked.ID != "b" {
		t.Fatalf("auto-picked %v, want the gold-containing pair", picked.ID)
	}
}

func TestSkipDisconnectedAdvancesPastMissingPlayers(t *testing.T) {
	players := []PlayerHealthSlot{
		{PlayerID: "p0", Health: 10, SlotIndex: 0},
		{PlayerID: "p1", Health: 20, SlotIndex: 1},
	}
	e := NewEngine(players, samplePairs())
	connected := map[string]bool{"p0": false, "p1": true}
	e.SkipDisconnected(func(id string) bool { return connected[id] })

	got, ok := e.CurrentPicker()
	if !ok || got != "p1" {
		t.Fatalf("current picker = %v (ok=%v), want p1", got, ok)
	}
}

func samplePairs() []*Pair {
	return []*Pair{
		{ID: "m1", Type: PairGoldItem, A: Reward{Gold: 5}, B: Reward{ItemID: "x"}},
		{ID: "m2", Type: PairGoldItem, A: Reward{Gold: 6}, B: Reward{ItemID: "y"}},
		{ID: "m3", Type: PairGoldItem, A: Reward{Gold: 7}, B: Reward{ItemID: "z"}},
	}
}

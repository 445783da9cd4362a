package room

import (
	"testing"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/player"
	"github.com/autobattle/roomserver/internal/protocol"
)

func TestPairOfAlternatesHostOnRepeat(t *testing.T) {
	r := newTestRoom(t)
	a := player.NewPlayer("a", "Alice", 0)
	b := player.NewPlayer("b", "Bob", 1)

	first := r.pairOf(a, b)
	second := r.pairOf(a, b)

	if first.HostID == second.HostID {
		t.Fatalf("host did not alternate: both matchups hosted by %s", first.HostID)
	}
}

func TestBuildMatchupsCountsByPlayerCount(t *testing.T) {
	r := newTestRoom(t)
	mk := func(n int) []*Participant {
		var seats []*Participant
		for i := 0; i < n; i++ {
			p := player.NewPlayer(string(rune('a'+i)), "P", i)
			seats = append(seats, &Participant{Player: p, Connected: true})
		}
		return seats
	}

	cases := []struct {
		n          int
		wantPairs  int
		wantGhosts int
	}{
		{2, 1, 0},
		{3, 2, 1},
		{4, 2, 0},
	}
	for _, c := range cases {
		r.seats = mk(c.n)
		matchups := r.buildMatchups()
		if len(matchups) != c.wantPairs {
			t.Fatalf("n=%d: got %d matchups, want %d", c.n, len(matchups), c.wantPairs)
		}
		ghosts := 0
		for _, m := range matchups {
			if m.IsGhost {
				ghosts++
			}
		}
		if ghosts != c.wantGhosts {
			t.Fatalf("n=%d: got %d ghost matches, want %d", c.n, ghosts, c.wantGhosts)
		}
	}
}

func TestStartGameEntersPlanningAndGivesStarterUnit(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	r.Join("c2", "p2", "Bob")

	r.SetReady("p1", true)
	if r.phase != PhaseWaiting {
		t.Fatalf("phase = %v after only one ready, want waiting", r.phase)
	}
	r.SetReady("p2", true)

	if r.phase != PhasePlanning {
		t.Fatalf("phase = %v after both ready, want planning", r.phase)
	}
	if r.round != 1 {
		t.Fatalf("round = %d, want 1", r.round)
	}
	for _, s := range r.seats {
		if s.Player.BenchCount() == 0 {
			t.Fatalf("player %s has no starter unit", s.Player.ID)
		}
	}
}

func TestBuyUnitDeductsGoldAndReservesPool(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	r.Join("c2", "p2", "Bob")
	r.SetReady("p1", true)
	r.SetReady("p2", true)

	s, _ := r.findSeat("p1")
	p := s.Player
	p.Shop[0] = "footman"
	p.Gold = 10
	startGold := p.Gold
	availableBefore := r.pool.Available("footman")

	env := protocol.ActionEnvelope{Type: protocol.ActionBuyUnit, Data: []byte(`{"shopIndex":0}`)}
	if _, err := r.HandleAction("p1", env); err != nil {
		t.Fatalf("buyUnit failed: %v", err)
	}

	if p.Gold != startGold-1 {
		t.Fatalf("gold = %d, want %d", p.Gold, startGold-1)
	}
	if r.pool.Available("footman") != availableBefore-1 {
		t.Fatalf("pool available = %d, want %d", r.pool.Available("footman"), availableBefore-1)
	}
	if p.Shop[0] != "" {
		t.Fatalf("shop slot not cleared after purchase")
	}
}

func TestSellUnitRefundsGoldAndReturnsToPool(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	s, _ := r.findSeat("p1")
	p := s.Player

	r.pool.Take("footman")
	inst := &player.UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: "footman", Star: 1}
	p.AddToBench(inst)
	before := p.Gold
	availableBefore := r.pool.Available("footman")

	env := protocol.ActionEnvelope{Type: protocol.ActionSellUnit, Data: []byte(`{"instanceId":"` + inst.InstanceID + `"}`)}
	if _, err := r.HandleAction("p1", env); err != nil {
		t.Fatalf("sellUnit failed: %v", err)
	}
	if p.Gold != before+1 {
		t.Fatalf("gold = %d, want %d", p.Gold, before+1)
	}
	if r.pool.Available("footman") != availableBefore+1 {
		t.Fatalf("pool available after sell = %d, want %d", r.pool.Available("footman"), availableBefore+1)
	}
}

func TestMergeSweepCollapsesThreeBenchedDuplicates(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	s, _ := r.findSeat("p1")
	p := s.Player

	for i := 0; i < 3; i++ {
		inst := &player.UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: "footman", Star: 1}
		p.AddToBench(inst)
	}
	r.runMergeSweepUntilStable()

	var stars []int
	for _, u := range p.Bench {
		if u != nil {
			stars = append(stars, u.Star)
		}
	}
	if len(stars) != 1 || stars[0] != 2 {
		t.Fatalf("bench units after sweep = %v, want exactly one 2-star unit", stars)
	}
}

func TestMerchantRoundPicksInAscendingHealthOrder(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	r.Join("c2", "p2", "Bob")
	s1, _ := r.findSeat("p1")
	s2, _ := r.findSeat("p2")
	s1.Player.Health = 10
	s2.Player.Health = 50

	r.roundType = catalogue.RoundMadMerchant
	r.startMerchantRound()
	if r.merchantEngine == nil {
		t.Fatalf("merchant engine not started")
	}
	picker, ok := r.merchantEngine.CurrentPicker()
	if !ok || picker != "p1" {
		t.Fatalf("first picker = %v (ok=%v), want p1 (lower health)", picker, ok)
	}

	pairID := r.merchantEngine.Pairs()[0].ID
	if err := r.MerchantPick("p1", pairID); err != nil {
		t.Fatalf("MerchantPick failed: %v", err)
	}
	picker, ok = r.merchantEngine.CurrentPicker()
	if !ok || picker != "p2" {
		t.Fatalf("second picker = %v (ok=%v), want p2", picker, ok)
	}
}

func TestUseConsumableThenSelectItemChoiceGrantsChosenItem(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	s, _ := r.findSeat("p1")
	p := s.Player
	p.Inventory = []string{"potion"}

	env := protocol.ActionEnvelope{Type: protocol.ActionUseConsumable, Data: []byte(`{"itemIndex":0}`)}
	if _, err := r.HandleAction("p1", env); err != nil {
		t.Fatalf("useConsumable failed: %v", err)
	}
	if len(p.Inventory) != 0 {
		t.Fatalf("potion was not consumed: inventory = %v", p.Inventory)
	}
	if len(p.PendingSelections) != 1 || p.PendingSelections[0].Kind != "item_choice" {
		t.Fatalf("expected one item_choice pending selection, got %v", p.PendingSelections)
	}

	choiceEnv := protocol.ActionEnvelope{Type: protocol.ActionSelectItemChoice, Data: []byte(`{"choiceIndex":0}`)}
	if _, err := r.HandleAction("p1", choiceEnv); err != nil {
		t.Fatalf("selectItemChoice failed: %v", err)
	}
	if len(p.Inventory) != 1 {
		t.Fatalf("chosen item was not granted: inventory = %v", p.Inventory)
	}
	if len(p.PendingSelections) != 0 {
		t.Fatalf("pending selection not cleared after choice")
	}
}

func TestCombineItemsCraftsCombinedItemFromComponents(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	s, _ := r.findSeat("p1")
	p := s.Player
	p.Inventory = []string{"sword", "sword"}

	env := protocol.ActionEnvelope{Type: protocol.ActionCombineItems, Data: []byte(`{"itemIndex1":0,"itemIndex2":1}`)}
	if _, err := r.HandleAction("p1", env); err != nil {
		t.Fatalf("combineItems failed: %v", err)
	}
	if len(p.Inventory) != 1 || p.Inventory[0] != "greatsword" {
		t.Fatalf("inventory after combine = %v, want [greatsword]", p.Inventory)
	}
}

func TestRunPvERoundCollectsLootIntoPendingQueue(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	s, _ := r.findSeat("p1")
	p := s.Player
	p.Gold = 0

	inst := &player.UnitInstance{InstanceID: p.NewInstanceID(), TemplateID: "mauler", Star: 1}
	p.AddToBench(inst)
	p.PlaceOnBoard(inst.InstanceID, player.BoardCoord{X: 0, Y: 0})

	r.round = 1
	r.runPvERound()

	if len(p.PendingLoot) == 0 {
		t.Fatalf("expected at least one loot token after pve round, got none")
	}
	for _, tok := range p.PendingLoot {
		if tok.Kind != "gold" && tok.Kind != "item" {
			t.Fatalf("unexpected loot kind %q", tok.Kind)
		}
	}
}

func TestMajorCrestRoundRecordsEveryPlayersPick(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	r.Join("c2", "p2", "Bob")

	r.startMajorCrestRound()
	if len(r.majorCrestChoices["p1"]) == 0 {
		t.Fatalf("p1 was not offered any major crest choices")
	}

	r.SelectMajorCrest("p1", r.majorCrestChoices["p1"][0])
	r.SelectMajorCrest("p2", r.majorCrestChoices["p2"][0])

	s1, _ := r.findSeat("p1")
	s2, _ := r.findSeat("p2")
	if s1.Player.MajorCrest == "" || s2.Player.MajorCrest == "" {
		t.Fatalf("major crest not assigned to both players after picking")
	}
}

func TestScheduleAfterNoOpsWhenGenerationHasChanged(t *testing.T) {
	r := newTestRoom(t)
	var fired []func()
	r.onTimer = func(d float64, fn func()) {
		fired = append(fired, fn)
	}

	ran := false
	r.scheduleAfter(5, func(rm *Room) { ran = true })
	r.bumpGeneration()

	for _, fn := range fired {
		fn() // enqueues the generation-gated closure onto r.mailbox, as the real timer would
	}
	select {
	case job := <-r.mailbox:
		job(r)
	default:
		t.Fatalf("expected a job on the mailbox after the timer fired")
	}
	if ran {
		t.Fatalf("scheduled callback ran after its phase generation changed")
	}
}

// TestCombatResultsCallbackNoOpsAfterForcedPhaseAdvance is spec scenario S5:
// entering combat schedules enterResults for later; if the phase is
// force-advanced (e.g. a synthetic all-eliminated event ends the game early)
// before that timer fires, the stale callback must not mutate state or
// broadcast when it finally runs.
func TestCombatResultsCallbackNoOpsAfterForcedPhaseAdvance(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	r.Join("c2", "p2", "Bob")

	var fired []func()
	r.onTimer = func(d float64, fn func()) {
		fired = append(fired, fn)
	}
	var broadcasts int
	r.onBroadcast = func(playerID, msgType string, payload any) {
		broadcasts++
	}

	r.enterCombat() // schedules enterResults via scheduleAfter

	// Force-advance the phase out from under the pending callback, as a
	// synthetic "all eliminated" event would.
	s1, _ := r.findSeat("p1")
	s1.Player.Eliminated = true
	r.checkGameOver()
	if r.phase != PhaseGameOver {
		t.Fatalf("phase after checkGameOver = %v, want PhaseGameOver", r.phase)
	}
	broadcastsAtGameOver := broadcasts

	for _, fn := range fired {
		fn() // enqueue the generation-gated enterResults job, as the real timer would
	}
	select {
	case job := <-r.mailbox:
		job(r)
	default:
		t.Fatalf("expected a job on the mailbox after the timer fired")
	}

	if r.phase != PhaseGameOver {
		t.Fatalf("phase after stale callback fired = %v, want PhaseGameOver (unchanged)", r.phase)
	}
	if broadcasts != broadcastsAtGameOver {
		t.Fatalf("stale results callback broadcast %d more frames, want 0", broadcasts-broadcastsAtGameOver)
	}
}

func TestMerchantDisconnectSkipsPicker(t *testing.T) {
	r := newTestRoom(t)
	r.Join("c1", "p1", "Alice")
	r.Join("c2", "p2", "Bob")
	s1, _ := r.findSeat("p1")
	s2, _ := r.findSeat("p2")
	s1.Player.Health = 10
	s2.Player.Health = 50

	r.phase = PhasePlanning
	r.roundType = catalogue.RoundMadMerchant
	r.startMerchantRound()

	r.SetDisconnected("p1")

	picker, ok := r.merchantEngine.CurrentPicker()
	if !ok || picker != "p2" {
		t.Fatalf("picker after p1 disconnect = %v (ok=%v), want p2", picker, ok)
	}
}

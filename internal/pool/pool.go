// Package pool implements the shared unit pool (C2): a per-room multiset of
// unit copies, rolled into shops and reserved by purchase. Like the
// teacher's world.State maps, this type carries no locking — it is only
// ever touched from its owning room's single goroutine (spec §5).
package pool

import (
	"math/rand"

	"github.com/autobattle/roomserver/internal/catalogue"
)

// Pool is the shared multiset of unit copies available to roll into any
// player's shop within one room.
type Pool struct {
	cat   *catalogue.Catalogue
	count map[string]int // unit id -> copies remaining
	cap   map[string]int // unit id -> configured pool size
}

// New builds a pool at full capacity for every rollable (cost >= 1) unit in
// the catalogue.
func New(cat *catalogue.Catalogue) *Pool {
	p := &Pool{
		cat:   cat,
		count: make(map[string]int),
		cap:   make(map[string]int),
	}
	for _, u := range cat.AllUnits() {
		if u.Cost < 1 {
			continue // PvE-only units never enter the pool
		}
		size := catalogue.PoolSize(u.Cost)
		p.cap[u.ID] = size
		p.count[u.ID] = size
	}
	return p
}

// Take decrements the copy count for id if available. Fails silently
// (returns false) when none remain, per spec §4.2's contract.
func (p *Pool) Take(id string) bool {
	if p.count[id] <= 0 {
		return false
	}
	p.count[id]--
	return true
}

// Return gives n copies of id back to the pool, saturating at the
// configured cap.
func (p *Pool) Return(id string, n int) {
	cap, ok := p.cap[id]
	if !ok {
		return
	}
	p.count[id] += n
	if p.count[id] > cap {
		p.count[id] = cap
	}
}

// Available returns the current copy count for id.
func (p *Pool) Available(id string) int {
	return p.count[id]
}

// Roll samples a cost tier from the level's shop-odds distribution, then
// uniformly picks an available unit at that tier. If that tier is empty, it
// falls back to tiers 1..5 in order. Returns ("", false) if every tier is
// empty. Roll never removes from the pool — the caller must Take to
// reserve (spec §4.2 contract).
func (p *Pool) Roll(rng *rand.Rand, playerLevel int) (string, bool) {
	tier := p.sampleTier(rng, playerLevel)
	if id, ok := p.uniformAvailable(rng, tier); ok {
		return id, true
	}
	for t := 1; t <= 5; t++ {
		if id, ok := p.uniformAvailable(rng, t); ok {
			return id, true
		}
	}
	return "", false
}

func (p *Pool) sampleTier(rng *rand.Rand, level int) int {
	odds := catalogue.ShopOdds(level)
	roll := rng.Intn(100)
	acc := 0
	for i, pct := range odds {
		acc += pct
		if roll < acc {
			return i + 1
		}
	}
	return 5
}

func (p *Pool) uniformAvailable(rng *rand.Rand, tier int) (string, bool) {
	var candidates []string
	for _, u := range p.cat.UnitsByCost(tier) {
		if p.count[u.ID] > 0 {
			candidates = append(candidates, u.ID)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// Snapshot returns a copy of the current per-unit counts, for invariant
// checks and tests.
func (p *Pool) Snapshot() map[string]int {
	out := make(map[string]int, len(p.count))
	for id, n := range p.count {
		out[id] = n
	}
	return out
}

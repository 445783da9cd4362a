package room

import "github.com/autobattle/roomserver/internal/player"

// buildMatchups pairs active players for a PvP round (spec §4.5). The host
// of each pair is chosen by an alternating-memory rule: the pair's last
// host flips each time they meet again, and is random on a first meeting.
func (r *Room) buildMatchups() []Matchup {
	active := r.ActivePlayers()
	switch len(active) {
	case 0, 1:
		return nil
	case 2:
		return []Matchup{r.pairOf(active[0], active[1])}
	case 3:
		m := r.pairOf(active[0], active[1])
		ghost := Matchup{HostID: active[2].ID, AwayID: active[0].ID, IsGhost: true}
		return []Matchup{m, ghost}
	default: // 4
		order := append([]*player.Player(nil), active...)
		r.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		return []Matchup{
			r.pairOf(order[0], order[1]),
			r.pairOf(order[2], order[3]),
		}
	}
}

// pairOf decides the host for an unordered pair via the alternating-memory
// rule and records the choice for next time.
func (r *Room) pairOf(a, b *player.Player) Matchup {
	key := pairKey(a.ID, b.ID)
	last, seen := r.hostMemory[key]
	var hostID, awayID string
	switch {
	case !seen:
		if r.rng.Intn(2) == 0 {
			hostID, awayID = a.ID, b.ID
		} else {
			hostID, awayID = b.ID, a.ID
		}
	case last == a.ID:
		hostID, awayID = b.ID, a.ID
	default:
		hostID, awayID = a.ID, b.ID
	}
	r.hostMemory[key] = hostID
	return Matchup{HostID: hostID, AwayID: awayID}
}

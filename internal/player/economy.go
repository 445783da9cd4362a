package player

import "github.com/autobattle/roomserver/internal/catalogue"

const (
	baseIncome     = 5
	maxInterest    = 3
	interestDivisor = 5
	maxStreakBonus = 5
	streakBonusThreshold = 2
	xpPerPlanningPhase = 1

	// RerollCost and BuyXPCost/BuyXPAmount are not pinned by the spec's
	// economy invariants; they follow this genre's conventional values
	// (see DESIGN.md's Open Question decisions).
	RerollCost  = 2
	BuyXPCost   = 4
	BuyXPAmount = 4
)

// ApplyPlanningIncome grants the gold income a player earns on entering a
// planning phase (spec §4.3; passive XP is ApplyPlanningXP): a flat base, interest of
// floor(gold/5) capped at 3, and a streak bonus of min(streak,5) when the
// larger of the player's win/loss streak is at least 2.
func ApplyPlanningIncome(p *Player) {
	if p.Eliminated {
		return
	}
	interest := p.Gold / interestDivisor
	if interest > maxInterest {
		interest = maxInterest
	}
	streak := p.WinStreak
	if p.LossStreak > streak {
		streak = p.LossStreak
	}
	streakBonus := 0
	if streak >= streakBonusThreshold {
		streakBonus = streak
		if streakBonus > maxStreakBonus {
			streakBonus = maxStreakBonus
		}
	}
	p.Gold += baseIncome + interest + streakBonus
}

// ApplyPlanningXP grants the passive XP gained on entering a planning
// phase and resolves any level-ups it triggers, looping since the XP
// threshold table can chain a level-up into the next one.
func ApplyPlanningXP(p *Player) {
	if p.Eliminated {
		return
	}
	p.XP += xpPerPlanningPhase
	for {
		threshold, ok := catalogue.XPThreshold(p.Level)
		if !ok || p.Level >= catalogue.MaxLevel() {
			return
		}
		if p.XP < threshold {
			return
		}
		p.XP -= threshold
		p.Level++
	}
}

// BuyXP spends BuyXPCost gold for BuyXPAmount XP, resolving any level-ups
// it triggers. Returns false (no-op) if the player can't afford it or is
// already at the level cap.
func BuyXP(p *Player) bool {
	if p.Gold < BuyXPCost || p.Level >= catalogue.MaxLevel() {
		return false
	}
	p.Gold -= BuyXPCost
	p.XP += BuyXPAmount
	for {
		threshold, ok := catalogue.XPThreshold(p.Level)
		if !ok || p.Level >= catalogue.MaxLevel() {
			return true
		}
		if p.XP < threshold {
			return true
		}
		p.XP -= threshold
		p.Level++
	}
}

// ApplyDamage subtracts combat damage from a player's life total, clamping
// at zero, and sets Eliminated once it reaches zero (spec §3 invariant:
// eliminated iff health == 0).
func ApplyDamage(p *Player, dmg int) {
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.Eliminated = true
	}
}

// RecordRoundResult updates a player's win/loss streak after one combat
// round. Consecutive results of the same kind extend the streak;
// a change in kind resets the other counter and starts a fresh streak.
func RecordRoundResult(p *Player, won bool) {
	if won {
		p.WinStreak++
		p.LossStreak = 0
	} else {
		p.LossStreak++
		p.WinStreak = 0
	}
}

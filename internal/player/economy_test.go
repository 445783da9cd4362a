package player

import "testing"

func TestApplyPlanningIncomeInterestCap(t *testing.T) {
	p := newTestPlayer()
	p.Gold = 50 // interest would be 10, capped at 3
	ApplyPlanningIncome(p)
	if p.Gold != 50+baseIncome+maxInterest {
		t.Fatalf("gold = %d, want %d", p.Gold, 50+baseIncome+maxInterest)
	}
}

func TestApplyPlanningIncomeStreakBonus(t *testing.T) {
	p := newTestPlayer()
	p.Gold = 0
	p.WinStreak = 7 // clamps to maxStreakBonus
	ApplyPlanningIncome(p)
	if p.Gold != baseIncome+maxStreakBonus {
		t.Fatalf("gold = %d, want %d", p.Gold, baseIncome+maxStreakBonus)
	}
}

func TestApplyPlanningIncomeNoStreakBelowThreshold(t *testing.T) {
	p := newTestPlayer()
	p.Gold = 0
	p.WinStreak = 1
	ApplyPlanningIncome(p)
	if p.Gold != baseIncome {
		t.Fatalf("gold = %d, want %d (streak below threshold contributes nothing)", p.Gold, baseIncome)
	}
}

func TestApplyPlanningXPLevelsUp(t *testing.T) {
	p := newTestPlayer()
	p.Level = 1
	p.XP = 1 // one short of the level-1 threshold (2)

	ApplyPlanningXP(p)

	if p.Level != 2 || p.XP != 0 {
		t.Fatalf("level=%d xp=%d, want level=2 xp=0", p.Level, p.XP)
	}
}

func TestApplyPlanningXPChainsMultipleLevels(t *testing.T) {
	p := newTestPlayer()
	p.Level = 1
	p.XP = 7 // threshold(1)=2, threshold(2)=6: 7+1=8 crosses both

	ApplyPlanningXP(p)

	if p.Level != 3 {
		t.Fatalf("level = %d, want 3", p.Level)
	}
}

func TestApplyPlanningXPStopsAtCap(t *testing.T) {
	p := newTestPlayer()
	p.Level = 6
	p.XP = 100

	ApplyPlanningXP(p)

	if p.Level != 6 {
		t.Fatalf("level = %d, want 6 (level cap reached)", p.Level)
	}
}

func TestRecordRoundResultResetsOppositeStreak(t *testing.T) {
	p := newTestPlayer()
	p.WinStreak = 3
	RecordRoundResult(p, false)
	if p.WinStreak != 0 || p.LossStreak != 1 {
		t.Fatalf("winStreak=%d lossStreak=%d, want 0,1", p.WinStreak, p.LossStreak)
	}
}

func TestApplyDamageEliminatesAtZero(t *testing.T) {
	p := newTestPlayer()
	p.Health = 3
	ApplyDamage(p, 5)
	if p.Health != 0 || !p.Eliminated {
		t.Fatalf("health=%d eliminated=%v, want 0,true", p.Health, p.Eliminated)
	}
}

func TestApplyDamageNoEliminationAboveZero(t *testing.T) {
	p := newTestPlayer()
	p.Health = 10
	ApplyDamage(p, 4)
	if p.Health != 6 || p.Eliminated {
		t.Fatalf("health=%d eliminated=%v, want 6,false", p.Health, p.Eliminated)
	}
}

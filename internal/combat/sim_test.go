package combat

import (
	"reflect"
	"testing"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/hexgrid"
)

func TestDamageFormula(t *testing.T) {
	// S6: attack=100, armor=100 -> round(100*(1-100/200)) = 50.
	if got := damageFormula(100, 100); got != 50 {
		t.Fatalf("damageFormula(100,100) = %v, want 50", got)
	}
}

func oneFootman(id string, side Side, coord hexgrid.Coord) UnitSetup {
	return UnitSetup{
		InstanceID: id,
		TemplateID: "footman",
		Name:       "Footman",
		Side:       side,
		LocalCoord: coord,
		Stats: catalogue.StatBlock{
			Health: 650, Attack: 45, Armor: 25, MagicResist: 20,
			AttackSpeed: 0.75, Range: 1, ManaCap: 60, MoveSpeed: 1.2,
			CritChance: 0.25, CritDamage: 1.5,
		},
		DamageAffinity: "physical",
	}
}

func TestDeterministicCombat(t *testing.T) {
	host := []UnitSetup{oneFootman("host-1", SideHost, hexgrid.Coord{2, 0})}
	away := []UnitSetup{oneFootman("away-1", SideAway, hexgrid.Coord{2, 0})}

	r1 := NewSimulation(42, host, away).Run()
	r2 := NewSimulation(42, host, away).Run()

	if r1.DurationTicks != r2.DurationTicks {
		t.Fatalf("durationTicks differ: %d vs %d", r1.DurationTicks, r2.DurationTicks)
	}
	if !reflect.DeepEqual(r1.Events, r2.Events) {
		t.Fatalf("event logs differ between identical runs")
	}
	if r1.Winner != r2.Winner || r1.SurvivingCount != r2.SurvivingCount || r1.Damage != r2.Damage {
		t.Fatalf("outcomes differ: %+v vs %+v", r1, r2)
	}
}

func TestNoUnitsOnOneSideWinsImmediately(t *testing.T) {
	host := []UnitSetup{oneFootman("host-1", SideHost, hexgrid.Coord{2, 0})}
	result := NewSimulation(1, host, nil).Run()

	if result.NoContest {
		t.Fatalf("expected a decisive result, not a no-contest")
	}
	if result.Winner != SideHost {
		t.Fatalf("winner = %v, want SideHost", result.Winner)
	}
	if result.Damage != 1+result.SurvivingCount {
		t.Fatalf("damage = %d, want 1+survivors (%d)", result.Damage, 1+result.SurvivingCount)
	}
}

func TestBothSidesEmptyIsNoContest(t *testing.T) {
	result := NewSimulation(1, nil, nil).Run()
	if !result.NoContest {
		t.Fatalf("expected NoContest when both sides start empty")
	}
}

func TestCombatEndsWithOneSideDead(t *testing.T) {
	host := []UnitSetup{oneFootman("host-1", SideHost, hexgrid.Coord{2, 0})}
	away := []UnitSetup{oneFootman("away-1", SideAway, hexgrid.Coord{2, 0})}
	result := NewSimulation(7, host, away).Run()

	if result.DurationTicks >= MaxTicks {
		t.Fatalf("expected the fight to end before the tick cap for a 1v1 mirror match, got %d ticks", result.DurationTicks)
	}
	if result.SurvivingCount < 0 {
		t.Fatalf("surviving count must be non-negative")
	}
}

package room

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/autobattle/roomserver/internal/catalogue"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

const testUnitsYAML = `
units:
  - id: footman
    name: Footman
    cost: 1
    traits: [brawler]
    base: {health: 500, attack: 40, armor: 20, magic_resist: 20, attack_speed: 1.0, range: 1, mana_cap: 50, move_speed: 1.0}
  - id: archer
    name: Archer
    cost: 2
    traits: [marksman]
    base: {health: 400, attack: 35, armor: 10, magic_resist: 10, attack_speed: 1.2, range: 4, mana_cap: 40, move_speed: 1.0}
  - id: brute
    name: Brute
    cost: 3
    traits: [brawler]
    base: {health: 700, attack: 50, armor: 25, magic_resist: 25, attack_speed: 0.8, range: 1, mana_cap: 60, move_speed: 1.0}
  - id: mauler
    name: Mauler
    cost: 4
    traits: [brawler]
    base: {health: 900, attack: 60, armor: 30, magic_resist: 30, attack_speed: 0.8, range: 1, mana_cap: 60, move_speed: 1.0}
  - id: wolf
    name: Wolf
    cost: 0
    traits: []
    base: {health: 300, attack: 30, armor: 10, magic_resist: 10, attack_speed: 1.0, range: 1, mana_cap: 50, move_speed: 1.0}
`

const testTraitsYAML = `
traits:
  - id: brawler
    units: [footman, brute, mauler]
    tiers:
      - count: 2
        scope: unit
        bonuses: {armor: 10}
  - id: marksman
    units: [archer]
    tiers:
      - count: 1
        scope: unit
        bonuses: {attack: 5}
`

const testItemsYAML = `
items:
  - id: sword
    name: Sword
    kind: component
    stats: {attack: 10}
  - id: shield
    name: Shield
    kind: component
    stats: {armor: 10}
  - id: greatsword
    name: Greatsword
    kind: combined
    stats: {attack: 30}
    recipe: [sword, sword]
  - id: potion
    name: Potion
    kind: consumable
`

const testCrestsYAML = `
crests:
  - id: minor_fire
    name: Minor Fire
    kind: minor
    bonuses: {attack: 5}
  - id: minor_water
    name: Minor Water
    kind: minor
    bonuses: {armor: 5}
  - id: minor_earth
    name: Minor Earth
    kind: minor
    bonuses: {health: 50}
  - id: major_phoenix
    name: Phoenix Crest
    kind: major
    bonuses: {attack: 20}
`

func testCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("units.yaml", testUnitsYAML)
	write("traits.yaml", testTraitsYAML)
	write("items.yaml", testItemsYAML)
	write("crests.yaml", testCrestsYAML)

	cat, err := catalogue.Load(dir)
	if err != nil {
		t.Fatalf("load test catalogue: %v", err)
	}
	return cat
}

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	return New(Config{
		Code:      "TEST",
		Log:       testLogger(),
		Catalogue: testCatalogue(t),
		Seed:      1,
	})
}

package merchant

import (
	"math/rand"

	"github.com/autobattle/roomserver/internal/catalogue"
)

const pairCount = 6

// unitCostTiers is the uniform cost-tier range merchant unit rewards are
// drawn from (spec §4.6: "uniformly chosen from cost tiers 2-4").
var unitCostTiers = []int{2, 3, 4}

// GeneratePairs builds the 6 random reward pairs for one merchant round.
func GeneratePairs(rng *rand.Rand, cat *catalogue.Catalogue) []*Pair {
	pairs := make([]*Pair, 0, pairCount)
	for i := 0; i < pairCount; i++ {
		t := allPairTypes[rng.Intn(len(allPairTypes))]
		pairs = append(pairs, &Pair{
			ID:   pairID(i),
			Type: t,
			A:    randomReward(rng, cat, t, 0),
			B:    randomReward(rng, cat, t, 1),
		})
	}
	return pairs
}

func pairID(i int) string {
	return "merchant-pair-" + string(rune('1'+i))
}

// randomReward builds the half (slot 0 or 1) of a pair appropriate to its
// type: unit_item -> {unit, item}; crest_rerolls -> {crest, rerolls};
// gold_item -> {gold, item}; item_item -> {item, item};
// unit_crest -> {unit, crest}; item_crest -> {item, crest}.
func randomReward(rng *rand.Rand, cat *catalogue.Catalogue, t PairType, slot int) Reward {
	switch t {
	case PairUnitItem:
		if slot == 0 {
			return Reward{UnitTemplateID: randomUnit(rng, cat)}
		}
		return Reward{ItemID: randomNonComponentItem(rng, cat)}
	case PairCrestRerolls:
		if slot == 0 {
			return Reward{CrestID: randomMinorCrest(rng, cat)}
		}
		return Reward{Rerolls: 3}
	case PairGoldItem:
		if slot == 0 {
			return Reward{Gold: 5 + rng.Intn(4)} // 5-8 gold
		}
		return Reward{ItemID: randomNonComponentItem(rng, cat)}
	case PairItemItem:
		return Reward{ItemID: randomNonComponentItem(rng, cat)}
	case PairUnitCrest:
		if slot == 0 {
			return Reward{UnitTemplateID: randomUnit(rng, cat)}
		}
		return Reward{CrestID: randomMinorCrest(rng, cat)}
	case PairItemCrest:
		if slot == 0 {
			return Reward{ItemID: randomNonComponentItem(rng, cat)}
		}
		return Reward{CrestID: randomMinorCrest(rng, cat)}
	default:
		return Reward{}
	}
}

func randomUnit(rng *rand.Rand, cat *catalogue.Catalogue) string {
	tier := unitCostTiers[rng.Intn(len(unitCostTiers))]
	candidates := cat.UnitsByCost(tier)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.Intn(len(candidates))].ID
}

func randomNonComponentItem(rng *rand.Rand, cat *catalogue.Catalogue) string {
	var candidates []*catalogue.Item
	candidates = append(candidates, cat.ItemsByKind(catalogue.ItemCombined)...)
	candidates = append(candidates, cat.ItemsByKind(catalogue.ItemConsumable)...)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.Intn(len(candidates))].ID
}

func randomMinorCrest(rng *rand.Rand, cat *catalogue.Catalogue) string {
	candidates := cat.CrestsByKind(catalogue.CrestMinor)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.Intn(len(candidates))].ID
}

package catalogue

// These tables are fixed by spec §6; they are compile-time constants, not
// loaded data, because the spec gives their exact values (unlike unit/trait
// balance numbers, which are inputs).

// shopOdds[level-1] is the percent distribution over cost tiers 1..5.
var shopOdds = [6][5]int{
	{100, 0, 0, 0, 0},
	{80, 20, 0, 0, 0},
	{60, 30, 10, 0, 0},
	{35, 30, 25, 10, 0},
	{20, 25, 25, 25, 5},
	{10, 15, 25, 25, 25},
}

// ShopOdds returns the tier 1..5 percent distribution for a player level.
// Levels outside 1..6 clamp to the nearest bound.
func ShopOdds(level int) [5]int {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return shopOdds[level-1]
}

var starMultiplier = map[int]float64{1: 1.0, 2: 1.5, 3: 2.0}

// StarMultiplier returns the stat multiplier for a star level (1..3).
func StarMultiplier(star int) float64 {
	if m, ok := starMultiplier[star]; ok {
		return m
	}
	return 1.0
}

// SellPrice is cost × 3^(star−1).
func SellPrice(cost, star int) int {
	price := cost
	for i := 1; i < star; i++ {
		price *= 3
	}
	return price
}

// roundSchedule is the fixed round-1..14 schedule from spec §6; index
// beyond it defaults to pvp (spec §4.1) so games continue to a survivor.
var roundSchedule = []RoundType{
	RoundPveIntro, RoundPvP, RoundPvP, RoundMadMerchant, RoundPvP,
	RoundMajorCrest, RoundPvP, RoundPveLoot, RoundPvP, RoundMadMerchant,
	RoundPvP, RoundPveBoss, RoundPvP, RoundPvP,
}

// RoundTypeAt returns the round type for a 1-indexed round number.
func RoundTypeAt(round int) RoundType {
	if round < 1 {
		round = 1
	}
	if round <= len(roundSchedule) {
		return roundSchedule[round-1]
	}
	return RoundPvP
}

// poolSizeByTier is the configured per-template copy count for each cost
// tier (tier 0 / PvE-only units are not rollable and have no pool).
var poolSizeByTier = map[int]int{
	1: 30,
	2: 25,
	3: 18,
	4: 10,
	5: 9,
}

// PoolSize returns the configured number of copies per unit template at a
// cost tier.
func PoolSize(tier int) int {
	return poolSizeByTier[tier]
}

// maxUnitsByLevel caps board size by player level (spec §3 invariant).
var maxUnitsByLevel = map[int]int{
	1: 3, 2: 4, 3: 5, 4: 6, 5: 7, 6: 8,
}

// MaxUnits returns the maximum board size for a player level. Levels above
// the table's top cap at the last entry.
func MaxUnits(level int) int {
	if n, ok := maxUnitsByLevel[level]; ok {
		return n
	}
	if level > 6 {
		return maxUnitsByLevel[6]
	}
	return maxUnitsByLevel[1]
}

// xpThreshold[level] is the XP required to advance from level to level+1;
// it is spent on level-up, and any excess carries into the next level.
// Level 6 is the level cap (no further threshold).
var xpThreshold = map[int]int{
	1: 2, 2: 6, 3: 10, 4: 20, 5: 36,
}

// XPThreshold returns the XP needed to advance from the given level, and
// whether such a threshold exists (false at/above the level cap).
func XPThreshold(level int) (int, bool) {
	n, ok := xpThreshold[level]
	return n, ok
}

const maxLevel = 6

// MaxLevel is the highest attainable player level.
func MaxLevel() int { return maxLevel }

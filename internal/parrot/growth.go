package parrot

import "math"

// Capacity ceilings.
const (
	maxMemorizedWords  = 10000
	maxMemoryTimeHours = 8760 // one year
)

func normLevel(level int) int {
	if level < 1 {
		return 1
	}
	return level
}

// MaxExperience returns the experience needed to leave level. With
// learningBonus the threshold drops by 10%, rounded down.
func MaxExperience(level int, learningBonus bool) int {
	level = normLevel(level)

	var xp int
	switch {
	case level <= 10:
		xp = level * 10
	case level <= 25:
		xp = 100 + (level-10)*20
	case level <= 40:
		xp = 400 + (level-25)*30
	default:
		xp = 850 + (level-40)*50
	}

	if learningBonus {
		xp = xp * 9 / 10
	}
	return xp
}

// MemorizedWords returns how many reminders a parrot of this level can hold
// at once: floor(2^(level*0.8)) clamped to [1, 10000].
func MemorizedWords(level int) int {
	level = normLevel(level)

	v := math.Floor(math.Pow(2.0, float64(level)*0.8))
	if v > maxMemorizedWords {
		return maxMemorizedWords
	}
	if v < 1 {
		return 1
	}
	return int(v)
}

// MemoryTimeHours returns how long a reminder survives at this level.
func MemoryTimeHours(level int) int {
	level = normLevel(level)

	var h int
	switch {
	case level <= 5:
		h = level
	case level <= 15:
		h = 5 + (level-5)*2
	case level <= 30:
		h = 25 + (level-15)*3
	default:
		// avoid overflow for absurd levels before clamping
		if level > 30+maxMemoryTimeHours {
			return maxMemoryTimeHours
		}
		h = 70 + (level-30)*5
	}

	if h > maxMemoryTimeHours {
		return maxMemoryTimeHours
	}
	return h
}

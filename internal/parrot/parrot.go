// Package parrot is the ReminderParrot rules engine: growth curves, the
// skill graph, the stats fold, experience progression and reminder
// lifecycle arithmetic.
//
// Nothing in this package performs I/O or reads the wall clock; instants are
// always passed in. Values are not safe for concurrent mutation.
package parrot

import (
	"math"
	"time"
)

// Parrot is the per-installation aggregate.
type Parrot struct {
	Level             int       `json:"level"`
	CurrentExperience int       `json:"current_experience"`
	MaxExperience     int       `json:"max_experience"`
	MemorizedWords    int       `json:"memorized_words"`
	MemoryTimeHours   int       `json:"memory_time_hours"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewParrot returns a first-launch parrot.
func NewParrot(now time.Time) Parrot {
	return Parrot{
		Level:             1,
		CurrentExperience: 0,
		MaxExperience:     MaxExperience(1, false),
		MemorizedWords:    MemorizedWords(1),
		MemoryTimeHours:   MemoryTimeHours(1),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// LevelChange describes the outcome of an experience award.
type LevelChange struct {
	OldLevel  int  `json:"old_level"`
	NewLevel  int  `json:"new_level"`
	LeveledUp bool `json:"leveled_up"`
}

// AwardExperience adds amount to the parrot's experience. Reaching the
// threshold moves up exactly one level; any remaining overflow is kept as
// current experience and does not trigger a further level-up.
func (p *Parrot) AwardExperience(amount int, learningBonus bool) (LevelChange, error) {
	if amount < 0 {
		return LevelChange{}, validationf("experience amount %d is negative", amount)
	}
	if amount > math.MaxInt-p.CurrentExperience {
		return LevelChange{}, validationf("experience amount %d overflows current %d", amount, p.CurrentExperience)
	}

	change := LevelChange{OldLevel: p.Level, NewLevel: p.Level}
	newExp := p.CurrentExperience + amount
	if newExp < p.MaxExperience {
		p.CurrentExperience = newExp
		return change, nil
	}

	p.Level++
	p.CurrentExperience = newExp - p.MaxExperience
	p.MaxExperience = MaxExperience(p.Level, learningBonus)
	p.MemorizedWords = MemorizedWords(p.Level)
	p.MemoryTimeHours = MemoryTimeHours(p.Level)

	change.NewLevel = p.Level
	change.LeveledUp = true
	return change, nil
}

// Personality traits, each 0-100.
type Personality struct {
	Cheerfulness int `json:"cheerfulness"`
	Curiosity    int `json:"curiosity"`
	Sociability  int `json:"sociability"`
	Wisdom       int `json:"wisdom"`
}

const (
	basePersonality  = 50
	traitPerSkill    = 5
	maxPersonalityPt = 100
)

func clampTrait(v int) int {
	if v > maxPersonalityPt {
		return maxPersonalityPt
	}
	if v < 0 {
		return 0
	}
	return v
}

// DerivePersonality raises the trait tied to each unlocked skill's category.
func DerivePersonality(c *Catalog, unlocked SkillSet) Personality {
	p := Personality{basePersonality, basePersonality, basePersonality, basePersonality}
	for id := range unlocked {
		s, ok := c.Skill(id)
		if !ok {
			continue
		}
		switch s.Category {
		case CategoryExpression:
			p.Cheerfulness += traitPerSkill
		case CategoryIntelligence:
			p.Curiosity += traitPerSkill
		case CategorySocial:
			p.Sociability += traitPerSkill
		case CategorySpecial:
			p.Wisdom += traitPerSkill
		}
	}
	p.Cheerfulness = clampTrait(p.Cheerfulness)
	p.Curiosity = clampTrait(p.Curiosity)
	p.Sociability = clampTrait(p.Sociability)
	p.Wisdom = clampTrait(p.Wisdom)
	return p
}

// EnhancedParrot is the derived view: the aggregate plus its skills,
// composite stats and personality.
type EnhancedParrot struct {
	Parrot
	UnlockedSkills []string    `json:"unlocked_skills"`
	Stats          Stats       `json:"stats"`
	Personality    Personality `json:"personality"`
}

// Enhance builds the derived view of p.
func Enhance(c *Catalog, p Parrot, unlocked SkillSet) EnhancedParrot {
	return EnhancedParrot{
		Parrot:         p,
		UnlockedSkills: unlocked.IDs(),
		Stats:          ComputeStats(p.Level, unlocked),
		Personality:    DerivePersonality(c, unlocked),
	}
}

package parrot

import "math"

// Stats is the composite capability profile of a parrot.
type Stats struct {
	MemorizedWords    int     `json:"memorized_words"`
	MemoryTimeHours   int     `json:"memory_time_hours"`
	EmotionalRange    int     `json:"emotional_range"`
	SocialConnections int     `json:"social_connections"`
	LearningSpeed     float64 `json:"learning_speed"`
	StreakDays        int     `json:"streak_days"`
}

// HasLearningBonus reports whether unlocked skills speed up levelling.
func (s Stats) HasLearningBonus() bool {
	return s.LearningSpeed > 1.0
}

// skillBonus is one row of the bonus table. Zero multipliers mean 1.
type skillBonus struct {
	wordsMul   float64
	hoursMul   float64
	learnMul   float64
	emotionMin int
	socialAdd  int
}

var skillBonuses = map[string]skillBonus{
	SkillBasicEmotions:      {emotionMin: 3},
	SkillRichEmotions:       {emotionMin: 10},
	SkillPatternLearning:    {learnMul: 1.5, wordsMul: 1.2},
	SkillFamilyBonding:      {socialAdd: 5},
	SkillEmotionalSupport:   {socialAdd: 3, emotionMin: 7},
	SkillStreakTracking:     {learnMul: 1.1},
	SkillWeatherAwareness:   {learnMul: 1.2, wordsMul: 1.1},
	SkillPhotoMemories:      {hoursMul: 1.3},
	SkillBehavioralAnalysis: {learnMul: 2.0, wordsMul: 1.5},
	SkillMemoryGarden:       {hoursMul: 1.5, emotionMin: 5},
	SkillSeasonalModes:      {emotionMin: 6, learnMul: 1.15},
	SkillDreamDiary:         {hoursMul: 1.8, learnMul: 1.1},
	SkillMusicalAbility:     {emotionMin: 8, wordsMul: 1.2},
	SkillMasterCompanion:    {wordsMul: 2.0, hoursMul: 2.0, emotionMin: 15, socialAdd: 10, learnMul: 3.0},
}

func mul(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// BaseStats is the profile of a parrot at level with no skills.
func BaseStats(level int) Stats {
	return Stats{
		MemorizedWords:    MemorizedWords(level),
		MemoryTimeHours:   MemoryTimeHours(level),
		EmotionalRange:    1,
		SocialConnections: 0,
		LearningSpeed:     1.0,
		StreakDays:        0,
	}
}

// ComputeStats folds the bonuses of unlocked over the base profile for
// level. Unknown ids are ignored. Skills are folded in sorted id order so the
// float products, and with them the result, depend only on the set.
func ComputeStats(level int, unlocked SkillSet) Stats {
	return foldStats(level, unlocked.IDs())
}

// foldStats applies the bonuses of ids in the order given. Multipliers
// commute, but the float products can differ in the last bit between
// orders; integer stats are floored once at the end.
func foldStats(level int, ids []string) Stats {
	st := BaseStats(level)

	words := float64(st.MemorizedWords)
	hours := float64(st.MemoryTimeHours)
	learn := st.LearningSpeed

	for _, id := range ids {
		b, ok := skillBonuses[id]
		if !ok {
			continue
		}
		words *= mul(b.wordsMul)
		hours *= mul(b.hoursMul)
		learn *= mul(b.learnMul)
		if b.emotionMin > st.EmotionalRange {
			st.EmotionalRange = b.emotionMin
		}
		st.SocialConnections += b.socialAdd
	}

	st.MemorizedWords = int(math.Floor(words))
	st.MemoryTimeHours = int(math.Floor(hours))
	st.LearningSpeed = learn
	return st
}

package parrot

// Skill ids referenced by the stats fold.
const (
	SkillBasicEmotions      = "basic_emotions"
	SkillVoiceGreeting      = "voice_greeting"
	SkillRemindNetSharing   = "remind_net_sharing"
	SkillPatternLearning    = "pattern_learning"
	SkillFamilyBonding      = "family_bonding"
	SkillStreakTracking     = "streak_tracking"
	SkillRichEmotions       = "rich_emotions"
	SkillWeatherAwareness   = "weather_awareness"
	SkillEmotionalSupport   = "emotional_support"
	SkillDailyHaiku         = "daily_haiku"
	SkillPhotoMemories      = "photo_memories"
	SkillMemoryGarden       = "memory_garden"
	SkillMusicalAbility     = "musical_ability"
	SkillSeasonalModes      = "seasonal_modes"
	SkillBehavioralAnalysis = "behavioral_analysis"
	SkillDreamDiary         = "dream_diary"
	SkillMasterCompanion    = "master_companion"
)

var builtinSkills = []Skill{
	{ID: SkillBasicEmotions, Name: "Basic Emotions", Category: CategoryExpression, RequiredLevel: 2,
		Description: "Shows happy, sad and sleepy moods."},
	{ID: SkillVoiceGreeting, Name: "Voice Greeting", Category: CategoryExpression, RequiredLevel: 3,
		Description: "Greets you when you open the app.",
		Prerequisites: []string{SkillBasicEmotions}},
	{ID: SkillRemindNetSharing, Name: "RemindNet Sharing", Category: CategorySocial, RequiredLevel: 4,
		Description: "Posts memories to RemindNet for others to see."},
	{ID: SkillPatternLearning, Name: "Pattern Learning", Category: CategoryIntelligence, RequiredLevel: 5,
		Description: "Learns faster and holds more words."},
	{ID: SkillFamilyBonding, Name: "Family Bonding", Category: CategorySocial, RequiredLevel: 6,
		Description: "Makes friends with other parrots."},
	{ID: SkillStreakTracking, Name: "Streak Tracking", Category: CategoryIntelligence, RequiredLevel: 7,
		Description: "Counts the days you keep coming back.",
		Prerequisites: []string{SkillPatternLearning}},
	{ID: SkillRichEmotions, Name: "Rich Emotions", Category: CategoryExpression, RequiredLevel: 8,
		Description: "Expresses a full range of feelings.",
		Prerequisites: []string{SkillBasicEmotions}},
	{ID: SkillWeatherAwareness, Name: "Weather Awareness", Category: CategoryIntelligence, RequiredLevel: 10,
		Description: "Notices the weather outside.",
		Prerequisites: []string{SkillPatternLearning}},
	{ID: SkillEmotionalSupport, Name: "Emotional Support", Category: CategorySocial, RequiredLevel: 12,
		Description: "Cheers you up when tasks pile up.",
		Prerequisites: []string{SkillFamilyBonding, SkillBasicEmotions}},
	{ID: SkillDailyHaiku, Name: "Daily Haiku", Category: CategorySpecial, RequiredLevel: 14,
		Description: "Recites a short poem each morning.",
		Prerequisites: []string{SkillVoiceGreeting}},
	{ID: SkillPhotoMemories, Name: "Photo Memories", Category: CategorySocial, RequiredLevel: 15,
		Description: "Keeps pictures with memories a little longer.",
		Prerequisites: []string{SkillFamilyBonding}},
	{ID: SkillMemoryGarden, Name: "Memory Garden", Category: CategorySpecial, RequiredLevel: 18,
		Description: "Grows a garden where memories last.",
		Prerequisites: []string{SkillPhotoMemories}},
	{ID: SkillMusicalAbility, Name: "Musical Ability", Category: CategoryExpression, RequiredLevel: 20,
		Description: "Sings reminders back to you.",
		Prerequisites: []string{SkillRichEmotions}},
	{ID: SkillSeasonalModes, Name: "Seasonal Modes", Category: CategorySpecial, RequiredLevel: 22,
		Description: "Changes plumage with the seasons.",
		Prerequisites: []string{SkillWeatherAwareness}},
	{ID: SkillBehavioralAnalysis, Name: "Behavioral Analysis", Category: CategoryIntelligence, RequiredLevel: 25,
		Description: "Understands your habits.",
		Prerequisites: []string{SkillWeatherAwareness, SkillStreakTracking}},
	{ID: SkillDreamDiary, Name: "Dream Diary", Category: CategorySpecial, RequiredLevel: 30,
		Description: "Remembers things even while asleep.",
		Prerequisites: []string{SkillBehavioralAnalysis}},
	{ID: SkillMasterCompanion, Name: "Master Companion", Category: CategorySpecial, RequiredLevel: 50,
		Description: "The parrot at the peak of its abilities.",
		Prerequisites: []string{SkillDreamDiary, SkillMusicalAbility, SkillMemoryGarden, SkillEmotionalSupport}},
}

// DefaultCatalog returns a fresh catalog of the built-in skills.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(builtinSkills...)
	if err != nil {
		panic("parrot: invalid builtin catalog: " + err.Error())
	}
	return c
}

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remindersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parrot_reminders_created_total",
		Help: "Reminders created, including imports.",
	})
	remindersForgotten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parrot_reminders_forgotten_total",
		Help: "Reminders deleted by the expiry sweep.",
	})
	experienceAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parrot_experience_awarded_total",
		Help: "Experience points awarded.",
	})
	levelUps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parrot_level_ups_total",
		Help: "Level-ups.",
	})
	skillsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parrot_skills_unlocked_total",
		Help: "Skills unlocked by levelling.",
	})
	imports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parrot_imports_total",
		Help: "RemindNet import attempts by result.",
	}, []string{"result"})
	currentLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parrot_level",
		Help: "Current parrot level.",
	})
)

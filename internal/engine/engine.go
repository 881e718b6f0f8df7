package engine

import (
	"context"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/lazypower/reminderparrot/internal/parrot"
	"github.com/lazypower/reminderparrot/internal/store"
)

// ReminderStore persists reminders.
type ReminderStore interface {
	CreateReminder(ctx context.Context, r *parrot.Reminder) error
	GetReminder(ctx context.Context, id string) (*parrot.Reminder, error)
	ListReminders(ctx context.Context) ([]parrot.Reminder, error)
	UpdateReminder(ctx context.Context, r *parrot.Reminder) error
	DeleteReminder(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// ParrotStore persists the parrot aggregate and its unlocked skills.
type ParrotStore interface {
	GetParrot(ctx context.Context) (*parrot.Parrot, error)
	SaveParrot(ctx context.Context, p *parrot.Parrot) error
	UpdateParrot(ctx context.Context, p *parrot.Parrot) error
	UnlockedSkills(ctx context.Context) (parrot.SkillSet, error)
	AddUnlockedSkills(ctx context.Context, ids []string, at time.Time) error
}

// NotificationScheduler schedules the "forgotten" notice of a reminder.
type NotificationScheduler interface {
	ScheduleForgetNotification(ctx context.Context, r parrot.Reminder) error
	Cancel(ctx context.Context, reminderID string) error
	CancelAll(ctx context.Context) error
}

// PostNotifier tells a post's author that someone interacted with it.
type PostNotifier interface {
	NotifyPostOwner(ctx context.Context, post parrot.Post, actorName, kind string, at time.Time) error
}

// HistoryStore records at most one (post, actor) pair.
type HistoryStore interface {
	Record(ctx context.Context, postID, actorUserID string) error
	HasAlready(ctx context.Context, postID, actorUserID string) (bool, error)
	DeleteForPost(ctx context.Context, postID string) (int, error)
}

// SocialPostStore persists RemindNet posts.
type SocialPostStore interface {
	CreatePost(ctx context.Context, p *parrot.Post) error
	GetPost(ctx context.Context, id string) (*parrot.Post, error)
	ListPosts(ctx context.Context, now time.Time) ([]parrot.Post, error)
	Watch(ctx context.Context) <-chan []parrot.Post
	LikePost(ctx context.Context, id string) (int, error)
	DeletePost(ctx context.Context, postID, userID string) error
}

// Deps are the collaborators an Engine drives.
type Deps struct {
	Reminders     ReminderStore
	Parrots       ParrotStore
	Notifications NotificationScheduler
	PostNotifier  PostNotifier
	Posts         SocialPostStore
	Imports       HistoryStore
	Notified      HistoryStore
}

// Options tune experience awards and memory timing.
type Options struct {
	Debug           parrot.DebugMemory
	CompletionGrace time.Duration
	CreateXP        int
	CompleteXP      int
	ImportXP        int
}

// DefaultOptions mirrors config.Default().
func DefaultOptions() Options {
	return Options{
		CompletionGrace: 3 * time.Second,
		CreateXP:        1,
		CompleteXP:      2,
		ImportXP:        1,
	}
}

// User identifies the caller of a social operation.
type User struct {
	ID   string
	Name string
}

// Engine runs the parrot use cases against its collaborators. Every
// operation that reads or mutates the parrot, or checks capacity, holds mu,
// which is what serializes access to the core.
type Engine struct {
	deps    Deps
	catalog *parrot.Catalog
	opts    Options
	log     logrus.FieldLogger
	now     func() time.Time

	mu   sync.Mutex
	cron *rcron.Cron
}

// New creates an Engine. A nil catalog means the built-in one.
func New(deps Deps, catalog *parrot.Catalog, opts Options, log logrus.FieldLogger) *Engine {
	if catalog == nil {
		catalog = parrot.DefaultCatalog()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		deps:    deps,
		catalog: catalog,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

// NewFromDB wires every collaborator to the SQLite store.
func NewFromDB(db *store.DB, opts Options, log logrus.FieldLogger) *Engine {
	outbox := db.Notifications()
	return New(Deps{
		Reminders:     db,
		Parrots:       db,
		Notifications: outbox,
		PostNotifier:  outbox,
		Posts:         db,
		Imports:       db.ImportHistory(),
		Notified:      db.NotificationHistory(),
	}, nil, opts, log)
}

// SetClock replaces the wall clock, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Now reads the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Catalog returns the skill catalog in use.
func (e *Engine) Catalog() *parrot.Catalog {
	return e.catalog
}

// StartSweepTimer sweeps once now and then on schedule (robfig/cron syntax,
// e.g. "@every 1m").
func (e *Engine) StartSweepTimer(schedule string) error {
	e.runSweep()

	c := rcron.New()
	if _, err := c.AddFunc(schedule, e.runSweep); err != nil {
		return err
	}
	c.Start()
	e.cron = c
	e.log.WithField("schedule", schedule).Info("sweeper started")
	return nil
}

func (e *Engine) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := e.Sweep(ctx, e.now())
	if err != nil {
		e.log.WithError(err).Error("sweep failed")
		return
	}
	if res.Deleted+res.Purged > 0 {
		e.log.WithFields(logrus.Fields{
			"forgotten": len(res.Forgotten),
			"deleted":   res.Deleted,
			"purged":    res.Purged,
		}).Info("sweep")
	}
}

// Stop shuts down the sweeper, waiting briefly for a running sweep.
func (e *Engine) Stop() {
	if e.cron == nil {
		return
	}
	select {
	case <-e.cron.Stop().Done():
	case <-time.After(5 * time.Second):
		e.log.Warn("stop timeout waiting for sweep")
	}
	e.cron = nil
}

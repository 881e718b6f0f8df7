package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

// AwardResult is the outcome of an experience award.
type AwardResult struct {
	Change   parrot.LevelChange    `json:"change"`
	Parrot   parrot.EnhancedParrot `json:"parrot"`
	Unlocked []parrot.Skill        `json:"unlocked,omitempty"`
}

// SkillView is a catalog entry with its status for the current parrot.
type SkillView struct {
	parrot.Skill
	Status parrot.SkillStatus `json:"status"`
}

// loadParrot returns the parrot and its unlocked skills, creating the parrot
// on first launch. Skills the parrot should hold for its level but that were
// never persisted are unlocked here. Caller holds e.mu.
func (e *Engine) loadParrot(ctx context.Context) (parrot.Parrot, parrot.SkillSet, error) {
	stored, err := e.deps.Parrots.GetParrot(ctx)
	if err != nil {
		return parrot.Parrot{}, nil, parrot.Collaborator("get parrot", err)
	}

	var p parrot.Parrot
	if stored == nil {
		p = parrot.NewParrot(e.now())
		if err := e.deps.Parrots.SaveParrot(ctx, &p); err != nil {
			return parrot.Parrot{}, nil, parrot.Collaborator("save parrot", err)
		}
		e.log.Info("hatched a new parrot")
	} else {
		p = *stored
	}

	unlocked, err := e.deps.Parrots.UnlockedSkills(ctx)
	if err != nil {
		return parrot.Parrot{}, nil, parrot.Collaborator("load skills", err)
	}

	if missing := e.catalog.ResolveUnlocks(0, p.Level, unlocked); len(missing) > 0 {
		ids := skillIDs(missing)
		if err := e.deps.Parrots.AddUnlockedSkills(ctx, ids, e.now()); err != nil {
			e.log.WithError(err).WithField("skills", ids).Warn("reconcile skills failed")
		} else {
			for _, id := range ids {
				unlocked.Add(id)
			}
		}
	}
	return p, unlocked, nil
}

// Parrot returns the derived view of the parrot.
func (e *Engine) Parrot(ctx context.Context) (parrot.EnhancedParrot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, unlocked, err := e.loadParrot(ctx)
	if err != nil {
		return parrot.EnhancedParrot{}, err
	}
	return parrot.Enhance(e.catalog, p, unlocked), nil
}

// Skills lists the catalog with each skill's status.
func (e *Engine) Skills(ctx context.Context) ([]SkillView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, unlocked, err := e.loadParrot(ctx)
	if err != nil {
		return nil, err
	}
	all := e.catalog.All()
	out := make([]SkillView, len(all))
	for i, s := range all {
		out[i] = SkillView{Skill: s, Status: e.catalog.Classify(p.Level, unlocked, s)}
	}
	return out, nil
}

// AwardExperience adds amount to the parrot. A level-up unlocks the skills
// crossed and persists them.
func (e *Engine) AwardExperience(ctx context.Context, amount int) (AwardResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.award(ctx, amount)
}

// award is AwardExperience without locking. Caller holds e.mu.
func (e *Engine) award(ctx context.Context, amount int) (AwardResult, error) {
	p, unlocked, err := e.loadParrot(ctx)
	if err != nil {
		return AwardResult{}, err
	}

	stats := parrot.ComputeStats(p.Level, unlocked)
	change, err := p.AwardExperience(amount, stats.HasLearningBonus())
	if err != nil {
		return AwardResult{}, err
	}
	p.UpdatedAt = e.now()
	if err := e.deps.Parrots.UpdateParrot(ctx, &p); err != nil {
		return AwardResult{}, parrot.Collaborator("update parrot", err)
	}
	experienceAwarded.Add(float64(amount))
	currentLevel.Set(float64(p.Level))

	res := AwardResult{Change: change}
	if change.LeveledUp {
		levelUps.Inc()
		gained := parrot.DeriveUnlockedSkills(e.catalog, change.OldLevel, change.NewLevel, unlocked)
		if len(gained) > 0 {
			ids := skillIDs(gained)
			// a failed write is retried by the next loadParrot
			if err := e.deps.Parrots.AddUnlockedSkills(ctx, ids, p.UpdatedAt); err != nil {
				e.log.WithError(err).WithField("skills", ids).Warn("persist unlocked skills failed")
			}
			for _, id := range ids {
				unlocked.Add(id)
			}
			skillsUnlocked.Add(float64(len(gained)))
			res.Unlocked = gained
		}
		e.log.WithFields(logrus.Fields{
			"level":  change.NewLevel,
			"skills": skillIDs(gained),
		}).Info("parrot levelled up")
	}

	res.Parrot = parrot.Enhance(e.catalog, p, unlocked)
	return res, nil
}

// awardQuietly grants experience as a side effect of another operation.
// Failures are logged, never returned.
func (e *Engine) awardQuietly(ctx context.Context, amount int, reason string) *AwardResult {
	if amount <= 0 {
		return nil
	}
	res, err := e.award(ctx, amount)
	if err != nil {
		e.log.WithError(err).WithField("reason", reason).Warn("experience award failed")
		return nil
	}
	return &res
}

// stats returns the current composite stats. Caller holds e.mu.
func (e *Engine) stats(ctx context.Context) (parrot.Stats, error) {
	p, unlocked, err := e.loadParrot(ctx)
	if err != nil {
		return parrot.Stats{}, err
	}
	return parrot.ComputeStats(p.Level, unlocked), nil
}

// checkCapacity fails with ErrCapacityExceeded when the parrot is full.
// Reminders past their forget time no longer count, swept or not.
// Caller holds e.mu.
func (e *Engine) checkCapacity(ctx context.Context, stats parrot.Stats) error {
	list, err := e.deps.Reminders.ListReminders(ctx)
	if err != nil {
		return parrot.Collaborator("list reminders", err)
	}
	now := e.now()
	held := 0
	for _, r := range list {
		if !parrot.IsExpired(r, now) {
			held++
		}
	}
	if parrot.IsAtCapacity(held, stats.MemorizedWords) {
		return fmt.Errorf("%w: holding %d of %d", parrot.ErrCapacityExceeded, held, stats.MemorizedWords)
	}
	return nil
}

func skillIDs(skills []parrot.Skill) []string {
	ids := make([]string, len(skills))
	for i, s := range skills {
		ids[i] = s.ID
	}
	return ids
}

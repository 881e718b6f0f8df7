package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

// ReminderResult is a reminder mutation and the experience it earned, if any.
type ReminderResult struct {
	Reminder parrot.Reminder `json:"reminder"`
	Award    *AwardResult    `json:"award,omitempty"`
}

// storeErr wraps a store failure unless it is one of the expected classes.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, parrot.ErrNotFound),
		errors.Is(err, parrot.ErrNotOwner),
		errors.Is(err, parrot.ErrValidation):
		return err
	}
	return parrot.Collaborator(op, err)
}

// ListReminders returns every reminder the parrot currently holds.
func (e *Engine) ListReminders(ctx context.Context) ([]parrot.Reminder, error) {
	list, err := e.deps.Reminders.ListReminders(ctx)
	if err != nil {
		return nil, parrot.Collaborator("list reminders", err)
	}
	return list, nil
}

// CreateReminder teaches the parrot a new reminder. It fails with
// ErrCapacityExceeded when the parrot already holds as many reminders as it
// has memorized words.
func (e *Engine) CreateReminder(ctx context.Context, text string) (ReminderResult, error) {
	text, err := parrot.ValidateText(text)
	if err != nil {
		return ReminderResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	stats, err := e.stats(ctx)
	if err != nil {
		return ReminderResult{}, err
	}
	if err := e.checkCapacity(ctx, stats); err != nil {
		return ReminderResult{}, err
	}

	r, err := e.insertReminder(ctx, text, stats)
	if err != nil {
		return ReminderResult{}, err
	}
	return ReminderResult{
		Reminder: r,
		Award:    e.awardQuietly(ctx, e.opts.CreateXP, "create reminder"),
	}, nil
}

// insertReminder stores a reminder forgotten after the current memory time
// and schedules its notice. Caller holds e.mu.
func (e *Engine) insertReminder(ctx context.Context, text string, stats parrot.Stats) (parrot.Reminder, error) {
	now := e.now()
	r := parrot.Reminder{
		Text:      text,
		CreatedAt: now,
		ForgetAt:  parrot.ComputeForgetAt(now, stats.MemoryTimeHours, e.opts.Debug),
	}
	if err := e.deps.Reminders.CreateReminder(ctx, &r); err != nil {
		return parrot.Reminder{}, parrot.Collaborator("create reminder", err)
	}
	remindersCreated.Inc()

	if err := e.deps.Notifications.ScheduleForgetNotification(ctx, r); err != nil {
		e.log.WithError(err).WithField("reminder", r.ID).Warn("schedule forget notification failed")
	}
	return r, nil
}

func (e *Engine) getReminder(ctx context.Context, id string) (*parrot.Reminder, error) {
	r, err := e.deps.Reminders.GetReminder(ctx, id)
	if err != nil {
		return nil, parrot.Collaborator("get reminder", err)
	}
	if r == nil {
		return nil, fmt.Errorf("reminder %s: %w", id, parrot.ErrNotFound)
	}
	return r, nil
}

// UpdateReminderText replaces a reminder's text. The forget time is kept.
func (e *Engine) UpdateReminderText(ctx context.Context, id, text string) (parrot.Reminder, error) {
	text, err := parrot.ValidateText(text)
	if err != nil {
		return parrot.Reminder{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.getReminder(ctx, id)
	if err != nil {
		return parrot.Reminder{}, err
	}
	r.Text = text
	if err := e.deps.Reminders.UpdateReminder(ctx, r); err != nil {
		return parrot.Reminder{}, storeErr("update reminder", err)
	}
	if !r.IsCompleted {
		if err := e.deps.Notifications.ScheduleForgetNotification(ctx, *r); err != nil {
			e.log.WithError(err).WithField("reminder", r.ID).Warn("reschedule forget notification failed")
		}
	}
	return *r, nil
}

// SetCompleted toggles a reminder's completion. Completing cancels its
// forget notice and earns experience once per transition; the sweep removes
// it after the completion grace delay. Undoing restores the notice.
func (e *Engine) SetCompleted(ctx context.Context, id string, completed bool) (ReminderResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.getReminder(ctx, id)
	if err != nil {
		return ReminderResult{}, err
	}
	if r.IsCompleted == completed {
		return ReminderResult{Reminder: *r}, nil
	}

	r.IsCompleted = completed
	if completed {
		at := e.now()
		r.CompletedAt = &at
	} else {
		r.CompletedAt = nil
	}
	if err := e.deps.Reminders.UpdateReminder(ctx, r); err != nil {
		return ReminderResult{}, storeErr("update reminder", err)
	}

	res := ReminderResult{Reminder: *r}
	if completed {
		if err := e.deps.Notifications.Cancel(ctx, r.ID); err != nil {
			e.log.WithError(err).WithField("reminder", r.ID).Warn("cancel forget notification failed")
		}
		res.Award = e.awardQuietly(ctx, e.opts.CompleteXP, "complete reminder")
	} else if !parrot.IsExpired(*r, e.now()) {
		if err := e.deps.Notifications.ScheduleForgetNotification(ctx, *r); err != nil {
			e.log.WithError(err).WithField("reminder", r.ID).Warn("schedule forget notification failed")
		}
	}
	return res, nil
}

// DeleteReminder removes a reminder and its pending notice.
func (e *Engine) DeleteReminder(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.deps.Reminders.DeleteReminder(ctx, id); err != nil {
		return storeErr("delete reminder", err)
	}
	if err := e.deps.Notifications.Cancel(ctx, id); err != nil {
		e.log.WithError(err).WithField("reminder", id).Warn("cancel forget notification failed")
	}
	return nil
}

// ForgetAll deletes every reminder and cancels all pending forget notices.
func (e *Engine) ForgetAll(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list, err := e.deps.Reminders.ListReminders(ctx)
	if err != nil {
		return 0, parrot.Collaborator("list reminders", err)
	}
	n := 0
	for _, r := range list {
		if err := e.deps.Reminders.DeleteReminder(ctx, r.ID); err != nil {
			if errors.Is(err, parrot.ErrNotFound) {
				continue
			}
			return n, parrot.Collaborator("delete reminder", err)
		}
		n++
	}
	if err := e.deps.Notifications.CancelAll(ctx); err != nil {
		e.log.WithError(err).Warn("cancel all notifications failed")
	}
	return n, nil
}

package engine

import (
	"context"
	"time"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

// SweepResult reports what one sweep removed.
type SweepResult struct {
	// Forgotten are the uncompleted reminders whose memory ran out.
	Forgotten []parrot.Reminder `json:"forgotten"`
	Deleted   int               `json:"deleted"`
	Purged    int               `json:"purged"`
}

// Sweep forgets every reminder expired at now and purges completed
// reminders whose grace delay has passed. All reminders are judged against
// the single instant now.
func (e *Engine) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list, err := e.deps.Reminders.ListReminders(ctx)
	if err != nil {
		return SweepResult{}, parrot.Collaborator("list reminders", err)
	}

	var res SweepResult
	expired, _ := parrot.Partition(list, now)
	for _, r := range expired {
		if r.IsCompleted {
			continue
		}
		res.Forgotten = append(res.Forgotten, r)
		// the notice was scheduled at creation; this only fills gaps
		if err := e.deps.Notifications.ScheduleForgetNotification(ctx, r); err != nil {
			e.log.WithError(err).WithField("reminder", r.ID).Warn("forget notification failed")
		}
	}

	res.Deleted, err = e.deps.Reminders.DeleteExpired(ctx, now)
	if err != nil {
		return res, parrot.Collaborator("delete expired", err)
	}
	res.Purged, err = e.deps.Reminders.DeleteCompletedBefore(ctx, now.Add(-e.opts.CompletionGrace))
	if err != nil {
		return res, parrot.Collaborator("purge completed", err)
	}
	remindersForgotten.Add(float64(len(res.Forgotten)))
	return res, nil
}

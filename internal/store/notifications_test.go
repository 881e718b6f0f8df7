package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

func TestScheduleForgetNotification(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	out := db.Notifications()

	r := parrot.Reminder{ID: "r1", Text: "feed cat", CreatedAt: t0, ForgetAt: t0.Add(time.Hour)}
	if err := out.ScheduleForgetNotification(ctx, r); err != nil {
		t.Fatalf("ScheduleForgetNotification: %v", err)
	}

	due, _ := out.DueNotifications(ctx, t0.Add(59*time.Minute), "")
	if len(due) != 0 {
		t.Errorf("due before fire time: %+v", due)
	}

	// Rescheduling moves the row rather than duplicating it.
	r.ForgetAt = t0.Add(2 * time.Hour)
	out.ScheduleForgetNotification(ctx, r)
	due, _ = out.DueNotifications(ctx, t0.Add(time.Hour), "")
	if len(due) != 0 {
		t.Errorf("due at old fire time after reschedule: %+v", due)
	}
	due, err := out.DueNotifications(ctx, t0.Add(2*time.Hour), "")
	if err != nil {
		t.Fatalf("DueNotifications: %v", err)
	}
	if len(due) != 1 || due[0].ReminderID != "r1" || due[0].Kind != KindForget {
		t.Fatalf("due = %+v", due)
	}

	if err := out.MarkDelivered(ctx, due[0].ID, t0.Add(2*time.Hour)); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if err := out.MarkDelivered(ctx, due[0].ID, t0); !errors.Is(err, parrot.ErrNotFound) {
		t.Errorf("double delivery: err = %v, want ErrNotFound", err)
	}

	// A delivered notice is not resurrected by another schedule call.
	out.ScheduleForgetNotification(ctx, r)
	if due, _ := out.DueNotifications(ctx, t0.Add(3*time.Hour), ""); len(due) != 0 {
		t.Errorf("delivered notice came back: %+v", due)
	}
}

func TestCancelNotifications(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	out := db.Notifications()

	for _, id := range []string{"a", "b", "c"} {
		out.ScheduleForgetNotification(ctx, parrot.Reminder{ID: id, Text: id, ForgetAt: t0})
	}
	if err := out.Cancel(ctx, "a"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	due, _ := out.DueNotifications(ctx, t0, "")
	if len(due) != 2 {
		t.Errorf("after cancel: %d due, want 2", len(due))
	}

	post := parrot.Post{ID: "p1", UserID: "owner", ReminderText: "x"}
	out.NotifyPostOwner(ctx, post, "fan", KindRemindNetLike, t0)

	if err := out.CancelAll(ctx); err != nil {
		t.Fatalf("CancelAll: %v", err)
	}
	due, _ = out.DueNotifications(ctx, t0.Add(time.Minute), "owner")
	if len(due) != 1 || due[0].Kind != KindRemindNetLike {
		t.Errorf("CancelAll should keep social notices: %+v", due)
	}
}

func TestNotifyPostOwnerRecipient(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	out := db.Notifications()

	post := parrot.Post{ID: "p1", UserID: "owner", ReminderText: "x"}
	if err := out.NotifyPostOwner(ctx, post, "fan", KindRemindNetImport, t0); err != nil {
		t.Fatalf("NotifyPostOwner: %v", err)
	}
	if err := out.NotifyPostOwner(ctx, post, "fan", "poke", t0); err == nil {
		t.Error("unknown kind accepted")
	}

	later := t0.Add(time.Minute)
	if due, _ := out.DueNotifications(ctx, later, "someone-else"); len(due) != 0 {
		t.Errorf("other user sees owner's notice: %+v", due)
	}
	due, _ := out.DueNotifications(ctx, later, "owner")
	if len(due) != 1 || due[0].PostID != "p1" || due[0].RecipientUserID != "owner" {
		t.Errorf("due = %+v", due)
	}
}

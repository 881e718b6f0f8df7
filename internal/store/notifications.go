package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

// Notification kinds.
const (
	KindForget          = "forget"
	KindRemindNetLike   = "remindnet_like"
	KindRemindNetImport = "remindnet_import"
)

// Notification is an outbox row. Delivery belongs to the client that polls
// DueNotifications.
type Notification struct {
	ID              int64      `json:"id"`
	Kind            string     `json:"kind"`
	ReminderID      string     `json:"reminder_id,omitempty"`
	PostID          string     `json:"post_id,omitempty"`
	RecipientUserID string     `json:"recipient_user_id,omitempty"`
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	FireAt          time.Time  `json:"fire_at"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
}

// Outbox is the SQLite-backed notification scheduler.
type Outbox struct {
	db *DB
}

// Notifications returns the notification outbox.
func (db *DB) Notifications() *Outbox {
	return &Outbox{db: db}
}

// ScheduleForgetNotification schedules (or moves) the "forgotten" notice for
// r at r.ForgetAt. A notice that was already delivered is left alone.
func (o *Outbox) ScheduleForgetNotification(ctx context.Context, r parrot.Reminder) error {
	_, err := o.db.ExecContext(ctx, `
		INSERT INTO scheduled_notifications (kind, reminder_id, title, body, fire_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (reminder_id) DO UPDATE SET
			title = excluded.title, body = excluded.body, fire_at = excluded.fire_at
		WHERE delivered_at IS NULL
	`, KindForget, r.ID, "Your parrot forgot something", fmt.Sprintf("%q flew away.", r.Text), toMillis(r.ForgetAt))
	if err != nil {
		return fmt.Errorf("schedule forget notification: %w", err)
	}
	return nil
}

// Cancel drops the pending forget notification for reminderID.
func (o *Outbox) Cancel(ctx context.Context, reminderID string) error {
	_, err := o.db.ExecContext(ctx, `
		DELETE FROM scheduled_notifications WHERE reminder_id = ? AND delivered_at IS NULL
	`, reminderID)
	if err != nil {
		return fmt.Errorf("cancel notification: %w", err)
	}
	return nil
}

// CancelAll drops every pending forget notification.
func (o *Outbox) CancelAll(ctx context.Context) error {
	_, err := o.db.ExecContext(ctx, `
		DELETE FROM scheduled_notifications WHERE kind = ? AND delivered_at IS NULL
	`, KindForget)
	if err != nil {
		return fmt.Errorf("cancel all notifications: %w", err)
	}
	return nil
}

// NotifyPostOwner queues a notice to the author of post, due at at.
func (o *Outbox) NotifyPostOwner(ctx context.Context, post parrot.Post, actorName, kind string, at time.Time) error {
	var title string
	switch kind {
	case KindRemindNetLike:
		title = fmt.Sprintf("%s liked your memory", actorName)
	case KindRemindNetImport:
		title = fmt.Sprintf("%s's parrot learned your memory", actorName)
	default:
		return fmt.Errorf("notify post owner: unknown kind %q", kind)
	}
	_, err := o.db.ExecContext(ctx, `
		INSERT INTO scheduled_notifications (kind, post_id, recipient_user_id, title, body, fire_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)
	`, kind, post.ID, post.UserID, title, post.ReminderText, toMillis(at))
	if err != nil {
		return fmt.Errorf("notify post owner: %w", err)
	}
	return nil
}

// DueNotifications returns undelivered rows due at now. Rows without a
// recipient belong to this installation and are always included; rows for
// other users only when recipient matches.
func (o *Outbox) DueNotifications(ctx context.Context, now time.Time, recipient string) ([]Notification, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT id, kind, reminder_id, post_id, recipient_user_id, title, body, fire_at, delivered_at
		FROM scheduled_notifications
		WHERE delivered_at IS NULL AND fire_at <= ?
			AND (recipient_user_id IS NULL OR recipient_user_id = ?)
		ORDER BY fire_at, id
	`, toMillis(now), recipient)
	if err != nil {
		return nil, fmt.Errorf("due notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var reminderID, postID, recipientID sql.NullString
		var fireAt int64
		var deliveredAt sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Kind, &reminderID, &postID, &recipientID, &n.Title, &n.Body, &fireAt, &deliveredAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ReminderID = reminderID.String
		n.PostID = postID.String
		n.RecipientUserID = recipientID.String
		n.FireAt = fromMillis(fireAt)
		n.DeliveredAt = timePtr(deliveredAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkDelivered stamps a notification as delivered.
func (o *Outbox) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	result, err := o.db.ExecContext(ctx, `
		UPDATE scheduled_notifications SET delivered_at = ? WHERE id = ? AND delivered_at IS NULL
	`, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("mark delivered %d: %w", id, parrot.ErrNotFound)
	}
	return nil
}

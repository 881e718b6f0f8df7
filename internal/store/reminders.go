package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

const reminderColumns = `id, text, is_completed, created_at, forget_at, completed_at`

// CreateReminder inserts r, assigning a ULID when r.ID is empty.
func (db *DB) CreateReminder(ctx context.Context, r *parrot.Reminder) error {
	if r.ID == "" {
		r.ID = ulid.Make().String()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO reminders (id, text, is_completed, created_at, forget_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Text, r.IsCompleted, toMillis(r.CreatedAt), toMillis(r.ForgetAt), nullMillis(r.CompletedAt))
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// GetReminder returns a reminder by id, or nil if not found.
func (db *DB) GetReminder(ctx context.Context, id string) (*parrot.Reminder, error) {
	row := db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

// ListReminders returns all reminders, oldest first.
func (db *DB) ListReminders(ctx context.Context) ([]parrot.Reminder, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+reminderColumns+` FROM reminders ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var out []parrot.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateReminder overwrites text, completion state and forget time.
func (db *DB) UpdateReminder(ctx context.Context, r *parrot.Reminder) error {
	result, err := db.ExecContext(ctx, `
		UPDATE reminders SET text = ?, is_completed = ?, forget_at = ?, completed_at = ?
		WHERE id = ?
	`, r.Text, r.IsCompleted, toMillis(r.ForgetAt), nullMillis(r.CompletedAt), r.ID)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update reminder %s: %w", r.ID, parrot.ErrNotFound)
	}
	return nil
}

// DeleteReminder removes a reminder.
func (db *DB) DeleteReminder(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete reminder %s: %w", id, parrot.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes every reminder whose forget time is at or before now.
func (db *DB) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM reminders WHERE forget_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// DeleteCompletedBefore removes completed reminders finished at or before cutoff.
func (db *DB) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := db.ExecContext(ctx, `
		DELETE FROM reminders WHERE is_completed = 1 AND completed_at IS NOT NULL AND completed_at <= ?
	`, toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete completed: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(s rowScanner) (*parrot.Reminder, error) {
	var r parrot.Reminder
	var createdAt, forgetAt int64
	var completedAt sql.NullInt64
	if err := s.Scan(&r.ID, &r.Text, &r.IsCompleted, &createdAt, &forgetAt, &completedAt); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMillis(createdAt)
	r.ForgetAt = fromMillis(forgetAt)
	r.CompletedAt = timePtr(completedAt)
	return &r, nil
}

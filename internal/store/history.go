package store

import (
	"context"
	"fmt"
	"time"
)

// History records at most one (post, actor) pair per action. Import and
// notification histories share this shape.
type History struct {
	db    *DB
	table string
}

// ImportHistory tracks which users imported which posts.
func (db *DB) ImportHistory() *History {
	return &History{db: db, table: "import_history"}
}

// NotificationHistory tracks which actors already triggered a post-owner
// notification.
func (db *DB) NotificationHistory() *History {
	return &History{db: db, table: "notification_history"}
}

// Record stores the pair. Recording an existing pair is a no-op.
func (h *History) Record(ctx context.Context, postID, actorUserID string) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO `+h.table+` (post_id, actor_user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (post_id, actor_user_id) DO NOTHING
	`, postID, actorUserID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record %s: %w", h.table, err)
	}
	return nil
}

// HasAlready reports whether the pair was recorded.
func (h *History) HasAlready(ctx context.Context, postID, actorUserID string) (bool, error) {
	var count int
	err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM `+h.table+` WHERE post_id = ? AND actor_user_id = ?
	`, postID, actorUserID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", h.table, err)
	}
	return count > 0, nil
}

// DeleteForPost drops every row referencing postID.
func (h *History) DeleteForPost(ctx context.Context, postID string) (int, error) {
	result, err := h.db.ExecContext(ctx, `DELETE FROM `+h.table+` WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("delete %s for post: %w", h.table, err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

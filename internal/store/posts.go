package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

const postColumns = `id, reminder_text, user_id, user_name, created_at, forget_at, likes_count, is_deleted`

// CreatePost inserts a RemindNet post, assigning a UUID when p.ID is empty.
func (db *DB) CreatePost(ctx context.Context, p *parrot.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO remindnet_posts (id, reminder_text, user_id, user_name, created_at, forget_at, likes_count, is_deleted)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?, 0)
	`, p.ID, p.ReminderText, p.UserID, p.UserName, toMillis(p.CreatedAt), toMillis(p.ForgetAt), p.LikesCount)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	db.feed.broadcast()
	return nil
}

// GetPost returns a post by id, including soft-deleted ones, or nil.
func (db *DB) GetPost(ctx context.Context, id string) (*parrot.Post, error) {
	row := db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM remindnet_posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// ListPosts returns live posts (not deleted, not yet forgotten), newest first.
func (db *DB) ListPosts(ctx context.Context, now time.Time) ([]parrot.Post, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM remindnet_posts
		WHERE is_deleted = 0 AND forget_at > ?
		ORDER BY created_at DESC, id
	`, toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []parrot.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// LikePost increments a live post's like count and returns the new count.
func (db *DB) LikePost(ctx context.Context, id string) (int, error) {
	var likes int
	err := db.QueryRowContext(ctx, `
		UPDATE remindnet_posts SET likes_count = likes_count + 1
		WHERE id = ? AND is_deleted = 0
		RETURNING likes_count
	`, id).Scan(&likes)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("like post %s: %w", id, parrot.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("like post: %w", err)
	}
	db.feed.broadcast()
	return likes, nil
}

// DeletePost soft-deletes a post owned by userID and drops its pending
// notifications. Anonymous posts cannot be deleted through this path.
func (db *DB) DeletePost(ctx context.Context, postID, userID string) error {
	p, err := db.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil || p.IsDeleted {
		return fmt.Errorf("delete post %s: %w", postID, parrot.ErrNotFound)
	}
	if p.UserID == "" || p.UserID != userID {
		return fmt.Errorf("delete post %s: %w", postID, parrot.ErrNotOwner)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete post: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE remindnet_posts SET is_deleted = 1 WHERE id = ?`, postID); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete post: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scheduled_notifications WHERE post_id = ? AND delivered_at IS NULL`, postID,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete post notifications: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete post: %w", err)
	}
	db.feed.broadcast()
	return nil
}

// Watch streams the live post list: once on subscribe and again after every
// change. The channel closes when ctx is done.
func (db *DB) Watch(ctx context.Context) <-chan []parrot.Post {
	out := make(chan []parrot.Post)
	notify := db.feed.subscribe()

	go func() {
		defer close(out)
		defer db.feed.unsubscribe(notify)

		for {
			if posts, err := db.ListPosts(ctx, time.Now()); err == nil {
				select {
				case out <- posts:
				case <-ctx.Done():
					return
				}
			} else if ctx.Err() != nil {
				return
			}

			select {
			case <-notify:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func scanPost(s rowScanner) (*parrot.Post, error) {
	var p parrot.Post
	var userID sql.NullString
	var createdAt, forgetAt int64
	if err := s.Scan(&p.ID, &p.ReminderText, &userID, &p.UserName, &createdAt, &forgetAt, &p.LikesCount, &p.IsDeleted); err != nil {
		return nil, err
	}
	p.UserID = userID.String
	p.CreatedAt = fromMillis(createdAt)
	p.ForgetAt = fromMillis(forgetAt)
	return &p, nil
}

// postFeed fans change signals out to Watch subscribers.
type postFeed struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newPostFeed() *postFeed {
	return &postFeed{subs: make(map[chan struct{}]struct{})}
}

func (f *postFeed) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *postFeed) unsubscribe(ch chan struct{}) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
}

// broadcast never blocks; a subscriber with a pending signal is coalesced.
func (f *postFeed) broadcast() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

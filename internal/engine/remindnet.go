package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lazypower/reminderparrot/internal/parrot"
	"github.com/lazypower/reminderparrot/internal/store"
)

const anonymousName = "Anonymous"

// Feed returns the live RemindNet posts, newest first.
func (e *Engine) Feed(ctx context.Context) ([]parrot.Post, error) {
	posts, err := e.deps.Posts.ListPosts(ctx, e.now())
	if err != nil {
		return nil, parrot.Collaborator("list posts", err)
	}
	return posts, nil
}

// WatchFeed streams the post list until ctx is done.
func (e *Engine) WatchFeed(ctx context.Context) <-chan []parrot.Post {
	return e.deps.Posts.Watch(ctx)
}

// Share publishes one of the parrot's reminders. The post is forgotten when
// the reminder is. Anonymous posts carry no user id and cannot be deleted
// later.
func (e *Engine) Share(ctx context.Context, reminderID string, user User, anonymous bool) (parrot.Post, error) {
	if user.ID == "" && !anonymous {
		return parrot.Post{}, parrot.ErrUnauthenticated
	}
	r, err := e.getReminder(ctx, reminderID)
	if err != nil {
		return parrot.Post{}, err
	}
	now := e.now()
	if parrot.IsExpired(*r, now) {
		return parrot.Post{}, fmt.Errorf("reminder %s already forgotten: %w", reminderID, parrot.ErrNotFound)
	}

	post := parrot.Post{
		ReminderText: r.Text,
		UserID:       user.ID,
		UserName:     user.Name,
		CreatedAt:    now,
		ForgetAt:     r.ForgetAt,
	}
	if anonymous {
		post.UserID = ""
		post.UserName = anonymousName
	} else if post.UserName == "" {
		post.UserName = user.ID
	}
	if err := e.deps.Posts.CreatePost(ctx, &post); err != nil {
		return parrot.Post{}, parrot.Collaborator("create post", err)
	}
	return post, nil
}

// livePost returns a post that is neither deleted nor forgotten.
func (e *Engine) livePost(ctx context.Context, postID string) (*parrot.Post, error) {
	post, err := e.deps.Posts.GetPost(ctx, postID)
	if err != nil {
		return nil, parrot.Collaborator("get post", err)
	}
	if post == nil || post.IsDeleted || !post.ForgetAt.After(e.now()) {
		return nil, fmt.Errorf("post %s: %w", postID, parrot.ErrNotFound)
	}
	return post, nil
}

// Import copies a post into the parrot's reminders. A user imports a post at
// most once, and never past the parrot's capacity. Neither refusal touches
// the reminder store, the notifier or the import history.
func (e *Engine) Import(ctx context.Context, postID string, user User) (ReminderResult, error) {
	res, err := e.importPost(ctx, postID, user)
	switch {
	case err == nil:
		imports.WithLabelValues("ok").Inc()
	case errors.Is(err, parrot.ErrAlreadyImported):
		imports.WithLabelValues("duplicate").Inc()
	case errors.Is(err, parrot.ErrCapacityExceeded):
		imports.WithLabelValues("capacity").Inc()
	default:
		imports.WithLabelValues("error").Inc()
	}
	return res, err
}

func (e *Engine) importPost(ctx context.Context, postID string, user User) (ReminderResult, error) {
	if user.ID == "" {
		return ReminderResult{}, parrot.ErrUnauthenticated
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	post, err := e.livePost(ctx, postID)
	if err != nil {
		return ReminderResult{}, err
	}

	done, err := e.deps.Imports.HasAlready(ctx, postID, user.ID)
	if err != nil {
		return ReminderResult{}, parrot.Collaborator("check import history", err)
	}
	if done {
		return ReminderResult{}, fmt.Errorf("post %s by %s: %w", postID, user.ID, parrot.ErrAlreadyImported)
	}

	stats, err := e.stats(ctx)
	if err != nil {
		return ReminderResult{}, err
	}
	if err := e.checkCapacity(ctx, stats); err != nil {
		return ReminderResult{}, err
	}

	r, err := e.insertReminder(ctx, post.ReminderText, stats)
	if err != nil {
		return ReminderResult{}, err
	}

	log := e.log.WithFields(logrus.Fields{"post": postID, "user": user.ID})
	if err := e.deps.Imports.Record(ctx, postID, user.ID); err != nil {
		log.WithError(err).Warn("record import failed")
	}

	res := ReminderResult{
		Reminder: r,
		Award:    e.awardQuietly(ctx, e.opts.ImportXP, "import post"),
	}
	e.notifyOwner(ctx, *post, user, store.KindRemindNetImport)
	return res, nil
}

// Like adds a like to a post and returns the new count. The author hears
// about it once per liking user.
func (e *Engine) Like(ctx context.Context, postID string, user User) (int, error) {
	if user.ID == "" {
		return 0, parrot.ErrUnauthenticated
	}
	post, err := e.livePost(ctx, postID)
	if err != nil {
		return 0, err
	}
	likes, err := e.deps.Posts.LikePost(ctx, postID)
	if err != nil {
		return 0, storeErr("like post", err)
	}

	notified, err := e.deps.Notified.HasAlready(ctx, postID, user.ID)
	if err != nil {
		e.log.WithError(err).WithField("post", postID).Warn("check notification history failed")
		return likes, nil
	}
	if !notified {
		if e.notifyOwner(ctx, *post, user, store.KindRemindNetLike) {
			if err := e.deps.Notified.Record(ctx, postID, user.ID); err != nil {
				e.log.WithError(err).WithField("post", postID).Warn("record notification failed")
			}
		}
	}
	return likes, nil
}

// notifyOwner tells the post's author about an interaction, skipping
// anonymous posts and the author's own actions. It reports whether a notice
// was queued. Failures are logged.
func (e *Engine) notifyOwner(ctx context.Context, post parrot.Post, actor User, kind string) bool {
	if post.UserID == "" || post.UserID == actor.ID {
		return false
	}
	name := actor.Name
	if name == "" {
		name = "Someone"
	}
	if err := e.deps.PostNotifier.NotifyPostOwner(ctx, post, name, kind, e.now()); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{"post": post.ID, "kind": kind}).Warn("notify post owner failed")
		return false
	}
	return true
}

// DeletePost soft-deletes the caller's own post and clears both histories
// for it.
func (e *Engine) DeletePost(ctx context.Context, postID string, user User) error {
	if user.ID == "" {
		return parrot.ErrUnauthenticated
	}
	if err := e.deps.Posts.DeletePost(ctx, postID, user.ID); err != nil {
		return storeErr("delete post", err)
	}
	for name, h := range map[string]HistoryStore{"import": e.deps.Imports, "notification": e.deps.Notified} {
		if _, err := h.DeleteForPost(ctx, postID); err != nil {
			e.log.WithError(err).WithField("post", postID).Warnf("clear %s history failed", name)
		}
	}
	return nil
}

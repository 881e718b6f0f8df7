package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/reminderparrot/internal/engine"
	"github.com/lazypower/reminderparrot/internal/parrot"
	"github.com/lazypower/reminderparrot/internal/store"
)

func createReminder(t *testing.T, srv *Server, text string) parrot.Reminder {
	t.Helper()
	w := do(t, srv, "POST", "/api/reminders", fmt.Sprintf(`{"text":%q}`, text), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body: %s", w.Code, w.Body.String())
	}
	var res engine.ReminderResult
	decode(t, w, &res)
	return res.Reminder
}

func sharePost(t *testing.T, srv *Server, reminderID, user string) parrot.Post {
	t.Helper()
	w := do(t, srv, "POST", "/api/remindnet/posts", fmt.Sprintf(`{"reminder_id":%q}`, reminderID), user)
	if w.Code != http.StatusCreated {
		t.Fatalf("share status = %d; body: %s", w.Code, w.Body.String())
	}
	var post parrot.Post
	decode(t, w, &post)
	return post
}

// levelUp moves the parrot to level 2, which holds three reminders.
func levelUp(t *testing.T, srv *Server) {
	t.Helper()
	if w := do(t, srv, "POST", "/api/parrot/experience", `{"amount":10}`, ""); w.Code != http.StatusOK {
		t.Fatalf("experience status = %d; body: %s", w.Code, w.Body.String())
	}
}

func TestGetParrot(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/parrot", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var p parrot.EnhancedParrot
	decode(t, w, &p)
	if p.Level != 1 || p.Stats.MemorizedWords != 1 || p.Personality.Wisdom != 50 {
		t.Errorf("parrot = %+v", p)
	}
}

func TestAwardExperience(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/parrot/experience", `{"amount":10}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var res engine.AwardResult
	decode(t, w, &res)
	if !res.Change.LeveledUp || res.Parrot.Level != 2 {
		t.Errorf("result = %+v", res)
	}

	if w := do(t, srv, "POST", "/api/parrot/experience", `{"amount":-3}`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("negative amount status = %d, want 400", w.Code)
	}
	if w := do(t, srv, "POST", "/api/parrot/experience", `nope`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", w.Code)
	}
}

func TestAwardExperienceOverflow(t *testing.T) {
	srv := testServer(t)

	body := fmt.Sprintf(`{"amount":%d}`, math.MaxInt)
	if w := do(t, srv, "POST", "/api/parrot/experience", body, ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	if w := do(t, srv, "POST", "/api/parrot/experience", `{"amount":100}`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("overflowing amount status = %d, want 400; body: %s", w.Code, w.Body.String())
	}
}

func TestSkillsEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/parrot/skills", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Count  int                `json:"count"`
		Skills []engine.SkillView `json:"skills"`
	}
	decode(t, w, &resp)
	if resp.Count != 17 || len(resp.Skills) != 17 {
		t.Errorf("count = %d, want 17", resp.Count)
	}
}

func TestCreateReminderCapacity(t *testing.T) {
	srv := testServer(t)

	r := createReminder(t, srv, "buy seeds")
	if r.ID == "" || r.Text != "buy seeds" {
		t.Errorf("reminder = %+v", r)
	}

	w := do(t, srv, "POST", "/api/reminders", `{"text":"second"}`, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("over capacity status = %d, want 422", w.Code)
	}

	w = do(t, srv, "GET", "/api/reminders", "", "")
	var resp struct {
		Count int `json:"count"`
	}
	decode(t, w, &resp)
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestCreateReminderValidation(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/reminders", `{"text":"   "}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank status = %d, want 400", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestUpdateReminder(t *testing.T) {
	srv := testServer(t)
	r := createReminder(t, srv, "draft")

	w := do(t, srv, "PATCH", "/api/reminders/"+r.ID, `{"text":"final","completed":true}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var res engine.ReminderResult
	decode(t, w, &res)
	if res.Reminder.Text != "final" || !res.Reminder.IsCompleted {
		t.Errorf("reminder = %+v", res.Reminder)
	}
	if res.Award == nil {
		t.Error("completion should award experience")
	}

	if w := do(t, srv, "PATCH", "/api/reminders/"+r.ID, `{}`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", w.Code)
	}
	if w := do(t, srv, "PATCH", "/api/reminders/missing", `{"completed":true}`, ""); w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", w.Code)
	}
}

func TestDeleteReminderRoute(t *testing.T) {
	srv := testServer(t)
	r := createReminder(t, srv, "temp")

	if w := do(t, srv, "DELETE", "/api/reminders/"+r.ID, "", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/reminders/"+r.ID, "", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestSweepRoute(t *testing.T) {
	srv := testServer(t)
	createReminder(t, srv, "not yet")

	w := do(t, srv, "POST", "/api/sweep", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res engine.SweepResult
	decode(t, w, &res)
	if res.Deleted != 0 {
		t.Errorf("deleted = %d, want 0", res.Deleted)
	}
}

func TestSweepRouteUsesEngineClock(t *testing.T) {
	srv := testServer(t)
	r := createReminder(t, srv, "soon gone")
	srv.engine.SetClock(func() time.Time { return r.ForgetAt.Add(time.Second) })

	w := do(t, srv, "POST", "/api/sweep", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res engine.SweepResult
	decode(t, w, &res)
	if res.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", res.Deleted)
	}
}

func TestShareRequiresUser(t *testing.T) {
	srv := testServer(t)
	r := createReminder(t, srv, "secret")

	w := do(t, srv, "POST", "/api/remindnet/posts", fmt.Sprintf(`{"reminder_id":%q}`, r.ID), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	w = do(t, srv, "POST", "/api/remindnet/posts", fmt.Sprintf(`{"reminder_id":%q,"anonymous":true}`, r.ID), "")
	if w.Code != http.StatusCreated {
		t.Errorf("anonymous status = %d, want 201", w.Code)
	}

	if w := do(t, srv, "POST", "/api/remindnet/posts", `{}`, "alice"); w.Code != http.StatusBadRequest {
		t.Errorf("missing id status = %d, want 400", w.Code)
	}
}

func TestImportRoutes(t *testing.T) {
	srv := testServer(t)
	levelUp(t, srv)
	r := createReminder(t, srv, "stretch")
	post := sharePost(t, srv, r.ID, "alice")

	path := "/api/remindnet/posts/" + post.ID + "/import"
	if w := do(t, srv, "POST", path, "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous import status = %d, want 401", w.Code)
	}
	if w := do(t, srv, "POST", path, "", "bob"); w.Code != http.StatusCreated {
		t.Fatalf("import status = %d; body: %s", w.Code, w.Body.String())
	}
	if w := do(t, srv, "POST", path, "", "bob"); w.Code != http.StatusConflict {
		t.Errorf("duplicate import status = %d, want 409", w.Code)
	}
	if w := do(t, srv, "POST", "/api/remindnet/posts/nope/import", "", "bob"); w.Code != http.StatusNotFound {
		t.Errorf("missing post status = %d, want 404", w.Code)
	}
}

func TestLikeAndNotifications(t *testing.T) {
	srv := testServer(t)
	r := createReminder(t, srv, "like me")
	post := sharePost(t, srv, r.ID, "alice")

	w := do(t, srv, "POST", "/api/remindnet/posts/"+post.ID+"/like", "", "bob")
	if w.Code != http.StatusOK {
		t.Fatalf("like status = %d; body: %s", w.Code, w.Body.String())
	}
	var liked map[string]int
	decode(t, w, &liked)
	if liked["likes_count"] != 1 {
		t.Errorf("likes_count = %d, want 1", liked["likes_count"])
	}

	w = do(t, srv, "GET", "/api/notifications/due", "", "alice")
	var due struct {
		Count         int                  `json:"count"`
		Notifications []store.Notification `json:"notifications"`
	}
	decode(t, w, &due)
	if due.Count != 1 || due.Notifications[0].Kind != store.KindRemindNetLike {
		t.Fatalf("due = %+v, want one like notice", due)
	}

	path := fmt.Sprintf("/api/notifications/%d/delivered", due.Notifications[0].ID)
	if w := do(t, srv, "POST", path, "", "alice"); w.Code != http.StatusOK {
		t.Errorf("delivered status = %d", w.Code)
	}
	if w := do(t, srv, "POST", path, "", "alice"); w.Code != http.StatusNotFound {
		t.Errorf("redelivered status = %d, want 404", w.Code)
	}
	if w := do(t, srv, "POST", "/api/notifications/abc/delivered", "", "alice"); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestDeletePostRoute(t *testing.T) {
	srv := testServer(t)
	r := createReminder(t, srv, "mine")
	post := sharePost(t, srv, r.ID, "alice")

	path := "/api/remindnet/posts/" + post.ID
	if w := do(t, srv, "DELETE", path, "", "bob"); w.Code != http.StatusForbidden {
		t.Errorf("non-owner status = %d, want 403", w.Code)
	}
	if w := do(t, srv, "DELETE", path, "", "alice"); w.Code != http.StatusOK {
		t.Fatalf("owner status = %d", w.Code)
	}

	w := do(t, srv, "GET", "/api/remindnet/posts", "", "")
	var feed struct {
		Count int `json:"count"`
	}
	decode(t, w, &feed)
	if feed.Count != 0 {
		t.Errorf("feed count = %d after delete", feed.Count)
	}
}

func TestStreamSendsPosts(t *testing.T) {
	srv := testServer(t)
	r := createReminder(t, srv, "streamed")
	sharePost(t, srv, r.ID, "alice")

	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/remindnet/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var posts []parrot.Post
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &posts); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if len(posts) != 1 || posts[0].ReminderText != "streamed" {
			t.Errorf("posts = %+v", posts)
		}
		return
	}
	t.Fatalf("stream ended without data: %v", sc.Err())
}

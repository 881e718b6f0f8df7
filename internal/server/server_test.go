package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lazypower/reminderparrot/internal/engine"
	"github.com/lazypower/reminderparrot/internal/parrot"
	"github.com/lazypower/reminderparrot/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	eng := engine.NewFromDB(db, engine.DefaultOptions(), nil)
	return New(db, eng, nil, "test-version")
}

// do sends a request as user (empty for none) and returns the recorder.
func do(t *testing.T, srv *Server, method, path, body, user string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != "" {
		req.Header.Set("X-User-ID", user)
		req.Header.Set("X-User-Name", strings.ToUpper(user[:1])+user[1:])
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)
	do(t, srv, "GET", "/api/parrot", "", "")

	w := do(t, srv, "GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "parrot_reminders_created_total") {
		t.Error("metrics missing parrot_reminders_created_total")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", parrot.ErrValidation), http.StatusBadRequest},
		{parrot.ErrUnauthenticated, http.StatusUnauthorized},
		{parrot.ErrNotOwner, http.StatusForbidden},
		{fmt.Errorf("post p: %w", parrot.ErrNotFound), http.StatusNotFound},
		{parrot.ErrAlreadyImported, http.StatusConflict},
		{parrot.ErrCapacityExceeded, http.StatusUnprocessableEntity},
		{parrot.Collaborator("list", errors.New("io")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

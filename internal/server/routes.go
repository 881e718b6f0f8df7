package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/reminderparrot/internal/engine"
)

const streamPingPeriod = 30 * time.Second

func (s *Server) handleGetParrot(w http.ResponseWriter, r *http.Request) {
	p, err := s.engine.Parrot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.engine.Skills(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(skills),
		"skills": skills,
	})
}

func (s *Server) handleAwardExperience(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := s.engine.AwardExperience(r.Context(), req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.ListReminders(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(list),
		"reminders": list,
	})
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := s.engine.CreateReminder(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Text      *string `json:"text"`
		Completed *bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Text == nil && req.Completed == nil {
		writeErrorMsg(w, http.StatusBadRequest, "text or completed required")
		return
	}

	var res engine.ReminderResult
	if req.Text != nil {
		rem, err := s.engine.UpdateReminderText(r.Context(), id, *req.Text)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res.Reminder = rem
	}
	if req.Completed != nil {
		var err error
		res, err = s.engine.SetCompleted(r.Context(), id, *req.Completed)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteReminder(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Sweep(r.Context(), s.engine.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDueNotifications(w http.ResponseWriter, r *http.Request) {
	due, err := s.db.Notifications().DueNotifications(r.Context(), s.engine.Now(), userFrom(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":         len(due),
		"notifications": due,
	})
}

func (s *Server) handleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := s.db.Notifications().MarkDelivered(r.Context(), id, s.engine.Now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered"})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.engine.Feed(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(posts),
		"posts": posts,
	})
}

// handleStream pushes the post list as server-sent events whenever it
// changes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorMsg(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	ctx := r.Context()
	updates := s.engine.WatchFeed(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case posts, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(posts)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "event: posts\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReminderID string `json:"reminder_id"`
		Anonymous  bool   `json:"anonymous"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ReminderID == "" {
		writeErrorMsg(w, http.StatusBadRequest, "reminder_id required")
		return
	}

	post, err := s.engine.Share(r.Context(), req.ReminderID, userFrom(r), req.Anonymous)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	likes, err := s.engine.Like(r.Context(), chi.URLParam(r, "id"), userFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes_count": likes})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Import(r.Context(), chi.URLParam(r, "id"), userFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeletePost(r.Context(), chi.URLParam(r, "id"), userFrom(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

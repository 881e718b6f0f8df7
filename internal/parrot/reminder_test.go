package parrot

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestComputeForgetAt(t *testing.T) {
	if got := ComputeForgetAt(t0, 5, DebugMemory{}); !got.Equal(t0.Add(5 * time.Hour)) {
		t.Errorf("forget at = %v, want +5h", got)
	}
	debug := DebugMemory{Enabled: true, Seconds: 30}
	if got := ComputeForgetAt(t0, 5, debug); !got.Equal(t0.Add(30 * time.Second)) {
		t.Errorf("debug forget at = %v, want +30s", got)
	}
	// Seconds are ignored when the flag is off.
	if got := ComputeForgetAt(t0, 2, DebugMemory{Seconds: 30}); !got.Equal(t0.Add(2 * time.Hour)) {
		t.Errorf("forget at = %v, want +2h", got)
	}
}

func TestIsExpiredBoundary(t *testing.T) {
	now := t0
	if !IsExpired(Reminder{ForgetAt: now}, now) {
		t.Error("forgetAt == now should be expired")
	}
	if IsExpired(Reminder{ForgetAt: now.Add(time.Second)}, now) {
		t.Error("forgetAt == now+1s should not be expired")
	}
	if !IsExpired(Reminder{ForgetAt: now.Add(-time.Hour)}, now) {
		t.Error("past forgetAt should be expired")
	}
}

func TestIsAtCapacity(t *testing.T) {
	cases := []struct {
		count, words int
		want         bool
	}{
		{0, 1, false},
		{1, 1, true},
		{2, 2, true},
		{1, 3, false},
		{5, 3, true},
	}
	for _, c := range cases {
		if got := IsAtCapacity(c.count, c.words); got != c.want {
			t.Errorf("IsAtCapacity(%d, %d) = %v, want %v", c.count, c.words, got, c.want)
		}
	}
}

func TestValidateText(t *testing.T) {
	got, err := ValidateText("  buy milk \n")
	if err != nil || got != "buy milk" {
		t.Errorf("ValidateText = %q, %v", got, err)
	}
	for _, bad := range []string{"", "   ", "\t\n", strings.Repeat("x", MaxTextRunes+1)} {
		if _, err := ValidateText(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("ValidateText(%q...) err = %v, want ErrValidation", bad[:min(len(bad), 10)], err)
		}
	}
	if _, err := ValidateText(strings.Repeat("é", MaxTextRunes)); err != nil {
		t.Errorf("max-length multibyte text rejected: %v", err)
	}
}

func TestIsPurgeable(t *testing.T) {
	done := t0
	r := Reminder{IsCompleted: true, CompletedAt: &done, ForgetAt: t0.Add(time.Hour)}
	grace := 3 * time.Second

	if IsPurgeable(r, t0.Add(2*time.Second), grace) {
		t.Error("purgeable inside grace window")
	}
	if !IsPurgeable(r, t0.Add(3*time.Second), grace) {
		t.Error("not purgeable at end of grace window")
	}
	r.IsCompleted = false
	if IsPurgeable(r, t0.Add(time.Minute), grace) {
		t.Error("incomplete reminder purgeable")
	}
}

func TestPartitionUsesOneInstant(t *testing.T) {
	now := t0
	rs := []Reminder{
		{ID: "a", ForgetAt: now.Add(-time.Minute)},
		{ID: "b", ForgetAt: now},
		{ID: "c", ForgetAt: now.Add(time.Second)},
	}
	expired, alive := Partition(rs, now)
	if len(expired) != 2 || expired[0].ID != "a" || expired[1].ID != "b" {
		t.Errorf("expired = %v", expired)
	}
	if len(alive) != 1 || alive[0].ID != "c" {
		t.Errorf("alive = %v", alive)
	}
}

func TestCollaboratorError(t *testing.T) {
	if Collaborator("op", nil) != nil {
		t.Error("nil error wrapped")
	}
	base := errors.New("disk full")
	err := Collaborator("create reminder", base)
	var ce *CollaboratorError
	if !errors.As(err, &ce) || ce.Op != "create reminder" {
		t.Fatalf("err = %v, want CollaboratorError", err)
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error lost")
	}
	if again := Collaborator("outer", err); again != err {
		t.Error("double wrapped")
	}
}

package parrot

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTextRunes bounds reminder text length.
const MaxTextRunes = 500

// Reminder is a memory the parrot holds until ForgetAt.
type Reminder struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	ForgetAt    time.Time  `json:"forget_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Post is a reminder shared on RemindNet. An empty UserID is anonymous.
type Post struct {
	ID           string    `json:"id"`
	ReminderText string    `json:"reminder_text"`
	UserID       string    `json:"user_id,omitempty"`
	UserName     string    `json:"user_name"`
	CreatedAt    time.Time `json:"created_at"`
	ForgetAt     time.Time `json:"forget_at"`
	LikesCount   int       `json:"likes_count"`
	IsDeleted    bool      `json:"is_deleted"`
}

// DebugMemory shortens memory to a fixed number of seconds for testing the
// forgetting flow by hand.
type DebugMemory struct {
	Enabled bool
	Seconds int
}

// ValidateText trims text and checks it is usable as a reminder.
func ValidateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", validationf("reminder text is empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxTextRunes {
		return "", validationf("reminder text is %d characters, max %d", n, MaxTextRunes)
	}
	return text, nil
}

// ComputeForgetAt returns when a reminder created at createdAt is forgotten.
func ComputeForgetAt(createdAt time.Time, memoryTimeHours int, debug DebugMemory) time.Time {
	if debug.Enabled {
		return createdAt.Add(time.Duration(debug.Seconds) * time.Second)
	}
	return createdAt.Add(time.Duration(memoryTimeHours) * time.Hour)
}

// IsExpired reports whether r's memory window has elapsed at now. The
// boundary is inclusive.
func IsExpired(r Reminder, now time.Time) bool {
	return !r.ForgetAt.After(now)
}

// IsPurgeable reports whether a completed reminder's grace delay has passed.
func IsPurgeable(r Reminder, now time.Time, grace time.Duration) bool {
	if !r.IsCompleted || r.CompletedAt == nil {
		return false
	}
	return !r.CompletedAt.Add(grace).After(now)
}

// IsAtCapacity reports whether the parrot cannot hold another reminder.
func IsAtCapacity(count, memorizedWords int) bool {
	return count >= memorizedWords
}

// Partition splits reminders into those expired at now and the rest.
// Every reminder is judged against the same instant.
func Partition(reminders []Reminder, now time.Time) (expired, alive []Reminder) {
	for _, r := range reminders {
		if IsExpired(r, now) {
			expired = append(expired, r)
		} else {
			alive = append(alive, r)
		}
	}
	return expired, alive
}

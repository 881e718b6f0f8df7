package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "parrot: singleton progression row",
		SQL: `
CREATE TABLE parrot (
    id                 INTEGER PRIMARY KEY CHECK (id = 1),
    level              INTEGER NOT NULL CHECK (level >= 1),
    current_experience INTEGER NOT NULL CHECK (current_experience >= 0),
    max_experience     INTEGER NOT NULL CHECK (max_experience > 0),
    memorized_words    INTEGER NOT NULL CHECK (memorized_words >= 1),
    memory_time_hours  INTEGER NOT NULL CHECK (memory_time_hours >= 1),
    created_at         INTEGER NOT NULL,
    updated_at         INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "parrot_skills: persisted unlocked-skill set",
		SQL: `
CREATE TABLE parrot_skills (
    skill_id    TEXT PRIMARY KEY,
    unlocked_at INTEGER NOT NULL
);
`,
	},
	{
		Version:     3,
		Description: "reminders: memories held by the parrot",
		SQL: `
CREATE TABLE reminders (
    id           TEXT PRIMARY KEY,
    text         TEXT NOT NULL CHECK (length(text) > 0),
    is_completed INTEGER NOT NULL DEFAULT 0,
    created_at   INTEGER NOT NULL,
    forget_at    INTEGER NOT NULL,
    completed_at INTEGER,
    CHECK (forget_at > created_at)
);

CREATE INDEX idx_reminders_forget_at ON reminders(forget_at);
CREATE INDEX idx_reminders_created   ON reminders(created_at);
`,
	},
	{
		Version:     4,
		Description: "remindnet_posts: shared reminders with soft delete",
		SQL: `
CREATE TABLE remindnet_posts (
    id            TEXT PRIMARY KEY,
    reminder_text TEXT NOT NULL,
    user_id       TEXT,
    user_name     TEXT NOT NULL DEFAULT '',
    created_at    INTEGER NOT NULL,
    forget_at     INTEGER NOT NULL,
    likes_count   INTEGER NOT NULL DEFAULT 0 CHECK (likes_count >= 0),
    is_deleted    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_posts_created ON remindnet_posts(created_at DESC);
CREATE INDEX idx_posts_user    ON remindnet_posts(user_id);
`,
	},
	{
		Version:     5,
		Description: "import_history / notification_history: once per actor per post",
		SQL: `
CREATE TABLE import_history (
    id            INTEGER PRIMARY KEY,
    post_id       TEXT NOT NULL,
    actor_user_id TEXT NOT NULL,
    created_at    INTEGER NOT NULL,
    UNIQUE (post_id, actor_user_id)
);

CREATE TABLE notification_history (
    id            INTEGER PRIMARY KEY,
    post_id       TEXT NOT NULL,
    actor_user_id TEXT NOT NULL,
    created_at    INTEGER NOT NULL,
    UNIQUE (post_id, actor_user_id)
);
`,
	},
	{
		Version:     6,
		Description: "scheduled_notifications: notification outbox",
		SQL: `
CREATE TABLE scheduled_notifications (
    id                INTEGER PRIMARY KEY,
    kind              TEXT NOT NULL CHECK (kind IN ('forget', 'remindnet_like', 'remindnet_import')),
    reminder_id       TEXT UNIQUE,
    post_id           TEXT,
    recipient_user_id TEXT,
    title             TEXT NOT NULL,
    body              TEXT NOT NULL,
    fire_at           INTEGER NOT NULL,
    delivered_at      INTEGER
);

CREATE INDEX idx_notifications_fire_at ON scheduled_notifications(fire_at);
CREATE INDEX idx_notifications_post    ON scheduled_notifications(post_id);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}

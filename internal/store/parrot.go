package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lazypower/reminderparrot/internal/parrot"
)

// GetParrot returns the stored parrot, or nil on first launch.
func (db *DB) GetParrot(ctx context.Context) (*parrot.Parrot, error) {
	var p parrot.Parrot
	var createdAt, updatedAt int64
	err := db.QueryRowContext(ctx, `
		SELECT level, current_experience, max_experience, memorized_words, memory_time_hours, created_at, updated_at
		FROM parrot WHERE id = 1
	`).Scan(&p.Level, &p.CurrentExperience, &p.MaxExperience, &p.MemorizedWords, &p.MemoryTimeHours, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get parrot: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

// SaveParrot inserts the parrot row. Fails if one already exists.
func (db *DB) SaveParrot(ctx context.Context, p *parrot.Parrot) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO parrot (id, level, current_experience, max_experience, memorized_words, memory_time_hours, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`, p.Level, p.CurrentExperience, p.MaxExperience, p.MemorizedWords, p.MemoryTimeHours,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save parrot: %w", err)
	}
	return nil
}

// UpdateParrot overwrites the progression of the existing parrot row.
func (db *DB) UpdateParrot(ctx context.Context, p *parrot.Parrot) error {
	result, err := db.ExecContext(ctx, `
		UPDATE parrot SET level = ?, current_experience = ?, max_experience = ?,
			memorized_words = ?, memory_time_hours = ?, updated_at = ?
		WHERE id = 1
	`, p.Level, p.CurrentExperience, p.MaxExperience, p.MemorizedWords, p.MemoryTimeHours, toMillis(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("update parrot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("update parrot: %w", parrot.ErrNotFound)
	}
	return nil
}

// UnlockedSkills returns the persisted unlocked-skill set.
func (db *DB) UnlockedSkills(ctx context.Context) (parrot.SkillSet, error) {
	rows, err := db.QueryContext(ctx, `SELECT skill_id FROM parrot_skills`)
	if err != nil {
		return nil, fmt.Errorf("list unlocked skills: %w", err)
	}
	defer rows.Close()

	set := parrot.NewSkillSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		set.Add(id)
	}
	return set, rows.Err()
}

// AddUnlockedSkills records ids as unlocked at at. Already-held ids keep
// their original unlock time.
func (db *DB) AddUnlockedSkills(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add skills: %w", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO parrot_skills (skill_id, unlocked_at) VALUES (?, ?)`,
			id, toMillis(at),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("add skill %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add skills: %w", err)
	}
	return nil
}

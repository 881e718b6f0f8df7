package store

import (
	"context"
	"testing"
)

func TestHistoryAtMostOnce(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, h := range []*History{db.ImportHistory(), db.NotificationHistory()} {
		t.Run(h.table, func(t *testing.T) {
			has, err := h.HasAlready(ctx, "p1", "u1")
			if err != nil || has {
				t.Fatalf("HasAlready before record = %v, %v", has, err)
			}

			if err := h.Record(ctx, "p1", "u1"); err != nil {
				t.Fatalf("Record: %v", err)
			}
			if err := h.Record(ctx, "p1", "u1"); err != nil {
				t.Fatalf("Record duplicate: %v", err)
			}
			h.Record(ctx, "p1", "u2")
			h.Record(ctx, "p2", "u1")

			if has, _ := h.HasAlready(ctx, "p1", "u1"); !has {
				t.Error("HasAlready(p1, u1) = false after record")
			}
			if has, _ := h.HasAlready(ctx, "p2", "u2"); has {
				t.Error("HasAlready(p2, u2) = true, never recorded")
			}

			n, err := h.DeleteForPost(ctx, "p1")
			if err != nil {
				t.Fatalf("DeleteForPost: %v", err)
			}
			if n != 2 {
				t.Errorf("deleted = %d, want 2", n)
			}
			if has, _ := h.HasAlready(ctx, "p2", "u1"); !has {
				t.Error("rows of other posts removed")
			}
		})
	}
}

func TestHistoriesAreSeparate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	db.ImportHistory().Record(ctx, "p1", "u1")
	if has, _ := db.NotificationHistory().HasAlready(ctx, "p1", "u1"); has {
		t.Error("import record leaked into notification history")
	}
}

package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openMigrated(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "inkflow.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

// idInserter is implemented by both *DB and *Tx
type idInserter interface {
	ExecReturningID(ctx context.Context, query string, args ...interface{}) (int64, error)
}

func insertSession(t *testing.T, ctx context.Context, q idInserter, userID string) int64 {
	t.Helper()
	id, err := q.ExecReturningID(ctx,
		"INSERT INTO review_sessions (user_id, mode, started_at, total_cards) VALUES (?, ?, ?, ?)",
		userID, "due", time.Now().UTC(), 3)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	tables := []string{"cards", "settings", "review_sessions", "review_events", "migrations"}
	for _, table := range tables {
		var name string
		err := db.GetContext(ctx, &name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// A second run must be a no-op
	if err := db.RunMigrations(ctx, nil); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM migrations"); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("migrations recorded = %d, want 1", count)
	}
}

func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	first := insertSession(t, ctx, db, "u1")
	second := insertSession(t, ctx, db, "u1")
	if first <= 0 || second != first+1 {
		t.Errorf("ids = %d, %d, want consecutive positive ids", first, second)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		insertSession(t, ctx, tx, "committed")
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	err = db.WithTx(ctx, func(tx *Tx) error {
		insertSession(t, ctx, tx, "rolled-back")
		return context.Canceled
	})
	if err != context.Canceled {
		t.Fatalf("WithTx() error = %v, want the callback error", err)
	}

	// rewritten placeholders inside a transaction
	err = db.WithTx(ctx, func(tx *Tx) error {
		var q DBTX = tx
		_, err := q.ExecContext(ctx, "UPDATE review_sessions SET mode = ? WHERE user_id = ?", "replay", "committed")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() update error = %v", err)
	}

	var users []string
	if err := db.SelectContext(ctx, &users, "SELECT user_id FROM review_sessions ORDER BY id"); err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0] != "committed" {
		t.Errorf("sessions = %v, want [committed]", users)
	}
	var mode string
	if err := db.GetContext(ctx, &mode, "SELECT mode FROM review_sessions WHERE user_id = ?", "committed"); err != nil {
		t.Fatal(err)
	}
	if mode != "replay" {
		t.Errorf("mode = %q, want replay", mode)
	}
}

func TestSettingUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	for _, v := range []string{"first", "second"} {
		if _, err := db.ExecContext(ctx, db.Dialect.UpsertSettingQuery(), "u1", "theme", v); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	var value string
	err := db.GetContext(ctx, &value, "SELECT setting_value FROM settings WHERE user_id = ? AND setting_key = ?", "u1", "theme")
	if err != nil {
		t.Fatal(err)
	}
	if value != "second" {
		t.Errorf("setting_value = %q, want second", value)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()
	insertSession(t, ctx, db, "concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var userID string
			if err := db.GetContext(ctx, &userID, "SELECT user_id FROM review_sessions WHERE user_id = ?", "concurrent"); err != nil {
				t.Errorf("Concurrent read failed: %v", err)
				return
			}
			if userID != "concurrent" {
				t.Errorf("Expected user 'concurrent', got '%s'", userID)
			}
		}()
	}
	wg.Wait()
}

package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/mentor-directory/internal/model"
)

// newTestDB returns a migrated in-memory database closed at test end.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestAccount(t *testing.T, db *DB, email, first, last string) (*model.Account, *model.Profile) {
	t.Helper()
	a := &model.Account{Email: email, PasswordHash: "hash", FirstName: first, LastName: last}
	p := &model.Profile{Year: model.YearJunior}
	if err := db.CreateAccount(context.Background(), a, p); err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return a, p
}

func createTestMentor(t *testing.T, db *DB, email, first, last string) *model.Mentor {
	t.Helper()
	_, p := createTestAccount(t, db, email, first, last)
	m, err := db.CreateOrActivateMentor(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("failed to create test mentor: %v", err)
	}
	return m
}

func names(list []model.Named) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Name
	}
	return out
}

func TestNew_MigratesSchema(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"accounts", "profiles", "mentors", "majors", "minors", "courses",
		"mentor_majors", "mentor_minors", "mentor_courses"} {
		var n int
		err := db.conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing after migrations", table)
		}
	}

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNew_ForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var on int
	if err := db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatalf("reading pragma: %v", err)
	}
	if on != 1 {
		t.Errorf("foreign_keys = %d, want 1", on)
	}
}

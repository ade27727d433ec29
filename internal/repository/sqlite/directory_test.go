package sqlite

import (
	"context"
	"reflect"
	"testing"

	"github.com/sakif/mentor-directory/internal/model"
)

func TestSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ann := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")
	ben := createTestMentor(t, db, "ben@g.ucla.edu", "Ben", "Ortiz")
	cara := createTestMentor(t, db, "cara@g.ucla.edu", "Cara", "Ng")
	createTestAccount(t, db, "dev@g.ucla.edu", "Dev", "Shah")

	db.UpdateMentor(ctx, model.MentorUpdate{
		MentorID: ann.ID,
		Bio:      strPtr("physics tutor"),
		Related: map[model.RelatedKind][]string{
			model.KindMajor:  {"Physics", "Mathematics"},
			model.KindCourse: {"Physics 1A"},
		},
	})
	db.UpdateMentor(ctx, model.MentorUpdate{MentorID: ben.ID, Active: boolPtr(false)})
	db.UpdateMentor(ctx, model.MentorUpdate{
		MentorID: cara.ID,
		Related:  map[model.RelatedKind][]string{model.KindMinor: {"Music"}},
	})

	got, err := db.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Snapshot() returned %d mentors, want 2 active", len(got))
	}
	if got[0].ID != ann.ID || got[1].ID != cara.ID {
		t.Errorf("order = [%s %s], want creation order", got[0].Profile.FirstName, got[1].Profile.FirstName)
	}
	if got[0].Seq >= got[1].Seq {
		t.Errorf("Seq not increasing: %d, %d", got[0].Seq, got[1].Seq)
	}

	if want := []string{"Physics", "Mathematics"}; !reflect.DeepEqual(names(got[0].Majors), want) {
		t.Errorf("ann majors = %v, want %v", names(got[0].Majors), want)
	}
	if want := []string{"Physics 1A"}; !reflect.DeepEqual(names(got[0].Courses), want) {
		t.Errorf("ann courses = %v, want %v", names(got[0].Courses), want)
	}
	if got[0].Bio != "physics tutor" || got[0].Profile.Email != "ann@g.ucla.edu" {
		t.Errorf("ann = %+v", got[0])
	}
	if len(got[1].Majors) != 0 || !reflect.DeepEqual(names(got[1].Minors), []string{"Music"}) {
		t.Errorf("cara lists = majors %v minors %v", names(got[1].Majors), names(got[1].Minors))
	}
}

func TestSnapshot_Empty(t *testing.T) {
	db := newTestDB(t)

	got, err := db.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Snapshot() = %d mentors, want 0", len(got))
	}
}

func TestSnapshot_OrdersBySeq(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ann := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")
	ben := createTestMentor(t, db, "ben@g.ucla.edu", "Ben", "Ortiz")
	if ben.Seq != ann.Seq+1 {
		t.Fatalf("Seq = %d, %d, want consecutive", ann.Seq, ben.Seq)
	}

	// Reassigning seq reorders the directory regardless of rowid.
	if _, err := db.conn.Exec(`UPDATE mentors SET seq = 100 WHERE id = ?`, ann.ID); err != nil {
		t.Fatalf("updating seq: %v", err)
	}
	if _, err := db.conn.Exec(`VACUUM`); err != nil {
		t.Fatalf("VACUUM: %v", err)
	}

	got, err := db.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != ben.ID || got[1].ID != ann.ID {
		t.Fatalf("Snapshot() order wrong: %+v", got)
	}
	if got[1].Seq != 100 {
		t.Errorf("ann Seq = %d, want 100", got[1].Seq)
	}

	cara := createTestMentor(t, db, "cara@g.ucla.edu", "Cara", "Ng")
	if cara.Seq != 101 {
		t.Errorf("new mentor Seq = %d, want 101", cara.Seq)
	}
}

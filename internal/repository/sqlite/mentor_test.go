package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/model"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

// =========================================================================
// CREATE / ACTIVATE
// =========================================================================

func TestCreateOrActivateMentor(t *testing.T) {
	db := newTestDB(t)
	a, p := createTestAccount(t, db, "ann@g.ucla.edu", "Ann", "Lee")

	m, err := db.CreateOrActivateMentor(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("CreateOrActivateMentor() error = %v", err)
	}
	if !m.Active {
		t.Error("new mentor is not active")
	}
	if m.Profile.ID != p.ID || m.Profile.AccountID != a.ID || m.Profile.FirstName != "Ann" {
		t.Errorf("embedded profile = %+v", m.Profile)
	}
	if m.Majors == nil || m.Minors == nil || m.Courses == nil {
		t.Error("lists should be empty, not nil")
	}
}

func TestCreateOrActivateMentor_ReactivatesExisting(t *testing.T) {
	db := newTestDB(t)
	_, p := createTestAccount(t, db, "ann@g.ucla.edu", "Ann", "Lee")
	ctx := context.Background()

	m, _ := db.CreateOrActivateMentor(ctx, p.ID)
	_, err := db.UpdateMentor(ctx, model.MentorUpdate{
		MentorID: m.ID,
		Active:   boolPtr(false),
		Bio:      strPtr("hello"),
		Related:  map[model.RelatedKind][]string{model.KindMajor: {"Physics"}},
	})
	if err != nil {
		t.Fatalf("UpdateMentor() error = %v", err)
	}

	again, err := db.CreateOrActivateMentor(ctx, p.ID)
	if err != nil {
		t.Fatalf("CreateOrActivateMentor() again error = %v", err)
	}
	if again.ID != m.ID || again.Seq != m.Seq {
		t.Errorf("mentor recreated: id %q -> %q", m.ID, again.ID)
	}
	if !again.Active {
		t.Error("mentor not reactivated")
	}
	if again.Bio != "hello" || !reflect.DeepEqual(names(again.Majors), []string{"Physics"}) {
		t.Errorf("reactivation lost data: bio=%q majors=%v", again.Bio, names(again.Majors))
	}
}

func TestCreateOrActivateMentor_UnknownProfile(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CreateOrActivateMentor(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetMentor(t *testing.T) {
	db := newTestDB(t)
	m := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")
	ctx := context.Background()

	byID, err := db.GetMentorByID(ctx, m.ID)
	if err != nil || byID.ID != m.ID {
		t.Fatalf("GetMentorByID() = %v, %v", byID, err)
	}
	byProfile, err := db.GetMentorByProfile(ctx, m.Profile.ID)
	if err != nil || byProfile.ID != m.ID {
		t.Fatalf("GetMentorByProfile() = %v, %v", byProfile, err)
	}

	if _, err := db.GetMentorByID(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetMentorByID(missing) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE / LIST REPLACEMENT
// =========================================================================

func TestUpdateMentor_ReplacesListsInOrder(t *testing.T) {
	db := newTestDB(t)
	m := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")
	ctx := context.Background()

	_, err := db.UpdateMentor(ctx, model.MentorUpdate{
		MentorID: m.ID,
		Related: map[model.RelatedKind][]string{
			model.KindMajor:  {"Physics", "Art"},
			model.KindMinor:  {"Music", "Film", "Dance"},
			model.KindCourse: {"CS 31", "CS 32", "Math 61", "Physics 1A"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateMentor() error = %v", err)
	}

	got, err := db.UpdateMentor(ctx, model.MentorUpdate{
		MentorID: m.ID,
		Related:  map[model.RelatedKind][]string{model.KindMajor: {"Mathematics", "physics"}},
	})
	if err != nil {
		t.Fatalf("UpdateMentor() second error = %v", err)
	}

	if want := []string{"Mathematics", "Physics"}; !reflect.DeepEqual(names(got.Majors), want) {
		t.Errorf("majors = %v, want %v (caller order, shared entity spelling)", names(got.Majors), want)
	}
	if want := []string{"Music", "Film", "Dance"}; !reflect.DeepEqual(names(got.Minors), want) {
		t.Errorf("minors = %v, want %v (untouched)", names(got.Minors), want)
	}
	if len(got.Courses) != 4 {
		t.Errorf("courses = %v, want 4 entries", names(got.Courses))
	}

	var majors int
	db.conn.QueryRow(`SELECT COUNT(*) FROM majors`).Scan(&majors)
	if majors != 3 {
		t.Errorf("majors table has %d rows, want 3 (entities are never deleted)", majors)
	}
}

func TestUpdateMentor_EmptyListClears(t *testing.T) {
	db := newTestDB(t)
	m := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")
	ctx := context.Background()

	db.UpdateMentor(ctx, model.MentorUpdate{
		MentorID: m.ID,
		Related:  map[model.RelatedKind][]string{model.KindCourse: {"CS 31"}},
	})
	got, err := db.UpdateMentor(ctx, model.MentorUpdate{
		MentorID: m.ID,
		Related:  map[model.RelatedKind][]string{model.KindCourse: {}},
	})
	if err != nil {
		t.Fatalf("UpdateMentor() error = %v", err)
	}
	if len(got.Courses) != 0 {
		t.Errorf("courses = %v, want empty", names(got.Courses))
	}
}

func TestUpdateMentor_CardinalityRollsBack(t *testing.T) {
	tests := []struct {
		name  string
		kind  model.RelatedKind
		names []string
	}{
		{"three majors", model.KindMajor, []string{"A", "B", "C"}},
		{"four minors", model.KindMinor, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			m := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")
			ctx := context.Background()

			_, err := db.UpdateMentor(ctx, model.MentorUpdate{
				MentorID: m.ID,
				Bio:      strPtr("before"),
				Related: map[model.RelatedKind][]string{
					model.KindMajor: {"Physics"},
					model.KindMinor: {"Music"},
				},
			})
			if err != nil {
				t.Fatalf("seeding mentor: %v", err)
			}

			_, err = db.UpdateMentor(ctx, model.MentorUpdate{
				MentorID: m.ID,
				Bio:      strPtr("after"),
				Related: map[model.RelatedKind][]string{
					model.KindCourse: {"CS 31"},
					tt.kind:          tt.names,
				},
			})
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("UpdateMentor() error = %v, want ErrValidation", err)
			}
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || appErr.Field != string(tt.kind) {
				t.Errorf("error field = %v, want %q", err, tt.kind)
			}

			got, err := db.GetMentorByID(ctx, m.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Bio != "before" {
				t.Errorf("bio = %q, want rollback to %q", got.Bio, "before")
			}
			if !reflect.DeepEqual(names(got.Majors), []string{"Physics"}) ||
				!reflect.DeepEqual(names(got.Minors), []string{"Music"}) ||
				len(got.Courses) != 0 {
				t.Errorf("lists changed: majors=%v minors=%v courses=%v",
					names(got.Majors), names(got.Minors), names(got.Courses))
			}
		})
	}
}

func TestUpdateMentor_DuplicateNamesCollapse(t *testing.T) {
	db := newTestDB(t)
	m := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")

	got, err := db.UpdateMentor(context.Background(), model.MentorUpdate{
		MentorID: m.ID,
		Related:  map[model.RelatedKind][]string{model.KindMajor: {"Physics", " physics ", "Art"}},
	})
	if err != nil {
		t.Fatalf("UpdateMentor() error = %v", err)
	}
	if want := []string{"Physics", "Art"}; !reflect.DeepEqual(names(got.Majors), want) {
		t.Errorf("majors = %v, want %v", names(got.Majors), want)
	}
}

func TestUpdateMentor_PartialFields(t *testing.T) {
	db := newTestDB(t)
	m := createTestMentor(t, db, "ann@g.ucla.edu", "Ann", "Lee")
	ctx := context.Background()

	db.UpdateMentor(ctx, model.MentorUpdate{MentorID: m.ID, Bio: strPtr("hi")})
	got, err := db.UpdateMentor(ctx, model.MentorUpdate{MentorID: m.ID, Active: boolPtr(false)})
	if err != nil {
		t.Fatalf("UpdateMentor() error = %v", err)
	}
	if got.Bio != "hi" || got.Active {
		t.Errorf("mentor = active %v bio %q, want inactive with bio kept", got.Active, got.Bio)
	}
}

func TestUpdateMentor_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.UpdateMentor(context.Background(), model.MentorUpdate{MentorID: "missing", Bio: strPtr("x")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

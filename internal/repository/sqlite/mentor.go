package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository"
)

var _ repository.MentorRepository = (*DB)(nil)

// mentorSelect joins a mentor with its profile and account.
const mentorSelect = `
	SELECT m.seq, m.id, m.active, m.bio, m.created_at, m.updated_at,
	       p.id, p.year, p.phone_number, p.verified,
	       a.id, a.first_name, a.last_name, a.email
	FROM mentors m
	JOIN profiles p ON p.id = m.profile_id
	JOIN accounts a ON a.id = p.account_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMentor(row rowScanner) (*model.Mentor, error) {
	var (
		m    model.Mentor
		year string
	)
	err := row.Scan(
		&m.Seq, &m.ID, &m.Active, &m.Bio, &m.CreatedAt, &m.UpdatedAt,
		&m.Profile.ID, &year, &m.Profile.PhoneNumber, &m.Profile.Verified,
		&m.Profile.AccountID, &m.Profile.FirstName, &m.Profile.LastName, &m.Profile.Email,
	)
	if err != nil {
		return nil, err
	}
	m.Profile.Year = model.Year(year)
	m.Majors, m.Minors, m.Courses = []model.Named{}, []model.Named{}, []model.Named{}
	return &m, nil
}

// CreateOrActivateMentor creates the profile's mentor, or sets an existing
// one active again. The mentor keeps its id, lists and creation order.
func (db *DB) CreateOrActivateMentor(ctx context.Context, profileID string) (*model.Mentor, error) {
	var out *model.Mentor
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM profiles WHERE id = ?`, profileID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("profile", profileID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: looking up profile %s: %w", profileID, err)
		}

		now := time.Now().UTC()
		var id string
		err = tx.QueryRowContext(ctx, `SELECT id FROM mentors WHERE profile_id = ?`, profileID).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id = xid.New().String()
			_, err = tx.ExecContext(ctx,
				`INSERT INTO mentors (id, seq, profile_id, active, bio, created_at, updated_at)
				 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM mentors), ?, 1, '', ?, ?)`,
				id, profileID, now, now,
			)
			if err != nil {
				return fmt.Errorf("sqlite: inserting mentor: %w", err)
			}
		case err != nil:
			return fmt.Errorf("sqlite: looking up mentor for profile %s: %w", profileID, err)
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE mentors SET active = 1, updated_at = ? WHERE id = ?`, now, id)
			if err != nil {
				return fmt.Errorf("sqlite: activating mentor %s: %w", id, err)
			}
		}

		out, err = getMentor(ctx, tx, `m.id = ?`, id)
		return err
	})
	return out, err
}

func (db *DB) GetMentorByID(ctx context.Context, id string) (*model.Mentor, error) {
	return getMentor(ctx, db.conn, `m.id = ?`, id)
}

func (db *DB) GetMentorByProfile(ctx context.Context, profileID string) (*model.Mentor, error) {
	return getMentor(ctx, db.conn, `m.profile_id = ?`, profileID)
}

func getMentor(ctx context.Context, q querier, where string, arg string) (*model.Mentor, error) {
	m, err := scanMentor(q.QueryRowContext(ctx, mentorSelect+` WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("mentor", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting mentor %s: %w", arg, err)
	}
	for _, kind := range model.RelatedKinds {
		names, err := relatedNames(ctx, q, kind, m.ID)
		if err != nil {
			return nil, err
		}
		m.SetRelated(kind, names)
	}
	return m, nil
}

func relatedNames(ctx context.Context, q querier, kind model.RelatedKind, mentorID string) ([]model.Named, error) {
	table := kind.Table()
	rows, err := q.QueryContext(ctx,
		`SELECT e.name FROM mentor_`+table+` l
		 JOIN `+table+` e ON e.id = l.entity_id
		 WHERE l.mentor_id = ?
		 ORDER BY l.position`,
		mentorID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s for mentor %s: %w", table, mentorID, err)
	}
	defer rows.Close()

	names := []model.Named{}
	for rows.Next() {
		var n model.Named
		if err := rows.Scan(&n.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", table, err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// UpdateMentor writes active and bio, then replaces each list present in
// u.Related. The whole update is one transaction; a list over its limit
// fails after the earlier writes and rolls all of them back.
func (db *DB) UpdateMentor(ctx context.Context, u model.MentorUpdate) (*model.Mentor, error) {
	var out *model.Mentor
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var active sql.NullBool
		if u.Active != nil {
			active = sql.NullBool{Bool: *u.Active, Valid: true}
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE mentors SET active = COALESCE(?, active), bio = COALESCE(?, bio), updated_at = ?
			 WHERE id = ?`,
			active, nullString(u.Bio), time.Now().UTC(), u.MentorID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating mentor %s: %w", u.MentorID, err)
		}
		if err := requireAffected(res, "mentor", u.MentorID); err != nil {
			return err
		}

		for _, kind := range model.RelatedKinds {
			names, ok := u.Related[kind]
			if !ok {
				continue
			}
			if err := replaceRelated(ctx, tx, u.MentorID, kind, names); err != nil {
				return err
			}
		}

		out, err = getMentor(ctx, tx, `m.id = ?`, u.MentorID)
		return err
	})
	return out, err
}

// replaceRelated swaps the mentor's kind list for names, creating any
// entity seen for the first time. Positions follow the order of names.
func replaceRelated(ctx context.Context, tx *sql.Tx, mentorID string, kind model.RelatedKind, names []string) error {
	names, err := model.NormalizeNames(kind, names)
	if err != nil {
		return err
	}

	table := kind.Table()
	if _, err := tx.ExecContext(ctx, `DELETE FROM mentor_`+table+` WHERE mentor_id = ?`, mentorID); err != nil {
		return fmt.Errorf("sqlite: clearing %s for mentor %s: %w", table, mentorID, err)
	}

	for pos, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+table+` (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("sqlite: creating %s %q: %w", table, name, err)
		}
		var entityID int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&entityID); err != nil {
			return fmt.Errorf("sqlite: looking up %s %q: %w", table, name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mentor_`+table+` (mentor_id, entity_id, position) VALUES (?, ?, ?)`,
			mentorID, entityID, pos); err != nil {
			return fmt.Errorf("sqlite: linking %s %q: %w", table, name, err)
		}
	}
	return nil
}

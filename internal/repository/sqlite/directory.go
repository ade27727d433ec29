package sqlite

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository"
)

var _ repository.DirectoryReader = (*DB)(nil)

// Snapshot loads every active mentor in creation order. The three related
// lists are fetched concurrently once the mentor rows are in memory.
func (db *DB) Snapshot(ctx context.Context) ([]model.Mentor, error) {
	rows, err := db.conn.QueryContext(ctx, mentorSelect+` WHERE m.active = 1 ORDER BY m.seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing mentors: %w", err)
	}
	var mentors []model.Mentor
	for rows.Next() {
		m, err := scanMentor(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning mentor: %w", err)
		}
		mentors = append(mentors, *m)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("sqlite: closing mentor rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating mentors: %w", err)
	}
	if len(mentors) == 0 {
		return mentors, nil
	}

	lists := make([]map[string][]model.Named, len(model.RelatedKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range model.RelatedKinds {
		g.Go(func() error {
			byMentor, err := db.activeRelated(gctx, kind)
			if err != nil {
				return err
			}
			lists[i] = byMentor
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range mentors {
		for k, kind := range model.RelatedKinds {
			if names, ok := lists[k][mentors[i].ID]; ok {
				mentors[i].SetRelated(kind, names)
			}
		}
	}
	return mentors, nil
}

// activeRelated returns the kind list of every active mentor, keyed by
// mentor id and in position order.
func (db *DB) activeRelated(ctx context.Context, kind model.RelatedKind) (map[string][]model.Named, error) {
	table := kind.Table()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT l.mentor_id, e.name FROM mentor_`+table+` l
		 JOIN `+table+` e ON e.id = l.entity_id
		 JOIN mentors m ON m.id = l.mentor_id
		 WHERE m.active = 1
		 ORDER BY l.mentor_id, l.position`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string][]model.Named)
	for rows.Next() {
		var mentorID, name string
		if err := rows.Scan(&mentorID, &name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", table, err)
		}
		out[mentorID] = append(out[mentorID], model.Named{Name: name})
	}
	return out, rows.Err()
}

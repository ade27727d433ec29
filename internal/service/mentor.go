package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository"
	"github.com/sakif/mentor-directory/internal/search"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MentorService manages the caller's own mentor record and runs directory
// searches.
type MentorService struct {
	profiles    repository.ProfileRepository
	mentors     repository.MentorRepository
	directory   repository.DirectoryReader
	engine      *search.Engine
	pageSize    int
	maxPageSize int
	logger      *slog.Logger
}

// NewMentorService wires the service. Non-positive page sizes fall back to
// DefaultPageSize and MaxPageSize.
func NewMentorService(
	profiles repository.ProfileRepository,
	mentors repository.MentorRepository,
	directory repository.DirectoryReader,
	engine *search.Engine,
	pageSize, maxPageSize int,
	logger *slog.Logger,
) *MentorService {
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = min(DefaultPageSize, maxPageSize)
	}
	return &MentorService{
		profiles:    profiles,
		mentors:     mentors,
		directory:   directory,
		engine:      engine,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
		logger:      logger,
	}
}

// Become makes the caller a mentor, reactivating an existing record rather
// than creating a second one.
func (s *MentorService) Become(ctx context.Context, accountID string) (*model.Mentor, error) {
	profile, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/mentor: fetching profile for %s: %w", accountID, err)
	}
	m, err := s.mentors.CreateOrActivateMentor(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("service/mentor: activating mentor for %s: %w", accountID, err)
	}
	s.logger.Info("mentor activated", slog.String("accountID", accountID), slog.String("mentorID", m.ID))
	return m, nil
}

// Mine returns the caller's mentor record.
func (s *MentorService) Mine(ctx context.Context, accountID string) (*model.Mentor, error) {
	profile, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/mentor: fetching profile for %s: %w", accountID, err)
	}
	m, err := s.mentors.GetMentorByProfile(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("service/mentor: fetching mentor for %s: %w", accountID, err)
	}
	return m, nil
}

func (s *MentorService) Get(ctx context.Context, id string) (*model.Mentor, error) {
	m, err := s.mentors.GetMentorByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/mentor: fetching mentor %s: %w", id, err)
	}
	return m, nil
}

// Update applies a partial update to the caller's mentor. Lists are
// validated before the write and replaced atomically by the repository.
func (s *MentorService) Update(ctx context.Context, accountID string, u model.MentorUpdate) (*model.Mentor, error) {
	mine, err := s.Mine(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := u.Normalize(); err != nil {
		return nil, err
	}
	u.MentorID = mine.ID

	m, err := s.mentors.UpdateMentor(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("service/mentor: updating mentor %s: %w", mine.ID, err)
	}
	attrs := []any{slog.String("mentorID", m.ID)}
	for kind, names := range u.Related {
		attrs = append(attrs, slog.Int(string(kind), len(names)))
	}
	s.logger.Info("mentor updated", attrs...)
	return m, nil
}

// SearchRequest is a query plus paging. Limit is clamped to the configured
// maximum; zero means the default page size.
type SearchRequest struct {
	Query  search.Query
	Limit  int
	Offset int
}

// Search snapshots the directory and ranks it against req.Query.
func (s *MentorService) Search(ctx context.Context, req SearchRequest) (search.Page, error) {
	mentors, err := s.directory.Snapshot(ctx)
	if err != nil {
		return search.Page{}, fmt.Errorf("service/mentor: loading directory: %w", err)
	}

	candidates := make([]search.Candidate, len(mentors))
	for i, m := range mentors {
		candidates[i] = search.NewCandidate(m)
	}
	hits := s.engine.Search(candidates, req.Query)

	limit := req.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	limit = min(limit, s.maxPageSize)

	s.logger.Debug("mentor search",
		slog.String("query", req.Query.Text),
		slog.Int("filters", req.Query.Filters.Count()),
		slog.Int("matches", len(hits)),
	)
	return search.Paginate(hits, limit, max(req.Offset, 0)), nil
}

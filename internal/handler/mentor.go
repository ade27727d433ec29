package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/auth"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/search"
	"github.com/sakif/mentor-directory/internal/service"
)

// MentorHandler serves /api/mentors.
type MentorHandler struct {
	mentors *service.MentorService
	logger  *slog.Logger
}

func NewMentorHandler(mentors *service.MentorService, logger *slog.Logger) *MentorHandler {
	return &MentorHandler{mentors: mentors, logger: logger}
}

type namedRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// patchMentorRequest is a partial update. A list that is absent or null is
// left alone; an empty list clears it.
type patchMentorRequest struct {
	Active  *bool          `json:"active"`
	Bio     *string        `json:"bio"`
	Major   []namedRequest `json:"major" validate:"max=2,dive"`
	Minor   []namedRequest `json:"minor" validate:"max=3,dive"`
	Courses []namedRequest `json:"courses" validate:"dive"`
}

func (req patchMentorRequest) toUpdate() model.MentorUpdate {
	u := model.MentorUpdate{Active: req.Active, Bio: req.Bio, Related: map[model.RelatedKind][]string{}}
	for kind, list := range map[model.RelatedKind][]namedRequest{
		model.KindMajor:  req.Major,
		model.KindMinor:  req.Minor,
		model.KindCourse: req.Courses,
	} {
		if list == nil {
			continue
		}
		names := make([]string, len(list))
		for i, n := range list {
			names[i] = n.Name
		}
		u.Related[kind] = names
	}
	return u
}

// HandleBecome creates the caller's mentor record or reactivates it.
func (h *MentorHandler) HandleBecome(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	m, err := h.mentors.Become(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MentorHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	m, err := h.mentors.Mine(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MentorHandler) HandlePatchMine(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req patchMentorRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	m, err := h.mentors.Update(r.Context(), accountID, req.toUpdate())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MentorHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.mentors.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleSearch reads query, the name/major/bio flags, random, limit and
// offset. Unparseable flags read as false and a bad random as no sampling.
func (h *MentorHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requester, _ := auth.AccountIDFromContext(r.Context())

	page, err := h.mentors.Search(r.Context(), service.SearchRequest{
		Query: search.Query{
			Text: q.Get("query"),
			Filters: search.Filters{
				Name:  flag(q.Get("name")),
				Major: flag(q.Get("major")),
				Bio:   flag(q.Get("bio")),
			},
			Requester: requester,
			Sample:    search.ParseSample(q.Get("random")),
		},
		Limit:  atoi(q.Get("limit")),
		Offset: atoi(q.Get("offset")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func flag(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}

func atoi(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

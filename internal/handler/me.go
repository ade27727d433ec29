package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/auth"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/service"
)

// ProfileHandler serves /api/me.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

type meResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	ProfileID   string     `json:"profile_id"`
	Year        model.Year `json:"year"`
	PhoneNumber string     `json:"phone_number"`
	Verified    bool       `json:"verified"`
}

func newMeResponse(me *service.Me) meResponse {
	return meResponse{
		ID:          me.Account.ID,
		Email:       me.Account.Email,
		FirstName:   me.Account.FirstName,
		LastName:    me.Account.LastName,
		ProfileID:   me.Profile.ID,
		Year:        me.Profile.Year,
		PhoneNumber: me.Profile.PhoneNumber,
		Verified:    me.Profile.Verified,
	}
}

// Field checks live in ProfileService so the same rules apply to every
// caller.
type patchMeRequest struct {
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Year        *string `json:"year"`
}

func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	me, err := h.profiles.Me(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMeResponse(me))
}

func (h *ProfileHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req patchMeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	u := service.MeUpdate{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Year != nil {
		y := model.Year(*req.Year)
		u.Year = &y
	}

	me, err := h.profiles.UpdateMe(r.Context(), accountID, u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMeResponse(me))
}

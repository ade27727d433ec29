package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/auth"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/service"
)

const stateCookie = "oauth_state"

// AccountHandler serves registration, login, verification, password reset
// and Google sign-in.
type AccountHandler struct {
	accounts     *service.AccountService
	google       *auth.GoogleProvider // nil when Google sign-in is not configured
	tokens       *auth.TokenService
	cookieSecure bool
	logger       *slog.Logger
}

func NewAccountHandler(
	accounts *service.AccountService,
	google *auth.GoogleProvider,
	tokens *auth.TokenService,
	cookieSecure bool,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		google:       google,
		tokens:       tokens,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"first_name" validate:"max=150"`
	LastName    string `json:"last_name" validate:"max=150"`
	Year        string `json:"year" validate:"omitempty,year"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Code string `json:"verification_code" validate:"required"`
}

type resetRequestRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetRequest struct {
	AccountID string `json:"userid" validate:"required"`
	Code      string `json:"code" validate:"required"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// HandleRegister creates an account and signs it in.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Year:        model.Year(req.Year),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, res.Account)
}

func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res.Account)
}

// HandleLogout deletes the token cookie.
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleVerify consumes the signed-in account's verification code.
func (h *AccountHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.Verify(r.Context(), accountID, req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// HandleRequestReset always answers 202 so callers cannot learn which emails exist.
func (h *AccountHandler) HandleRequestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "if the account exists, a reset code has been sent",
	})
}

func (h *AccountHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.ResetPassword(r.Context(), req.AccountID, req.Code, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// HandleGoogleLogin starts the OAuth flow, binding a random state to a
// short-lived cookie.
func (h *AccountHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback checks state, exchanges the code and signs the user
// in, redirecting to the site root.
func (h *AccountHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || r.URL.Query().Get("state") != c.Value {
		h.logger.Warn("google callback: state mismatch")
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if denied := r.URL.Query().Get("error"); denied != "" {
		h.logger.Info("google callback: user denied authorization", slog.String("error", denied))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	res, err := h.accounts.LoginWithGoogle(r.Context(), gu)
	if err != nil {
		if !errors.Is(err, apperror.ErrForbidden) {
			h.logger.Error("google callback: sign-in failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AccountHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

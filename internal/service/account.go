// Package service holds the business rules between the HTTP handlers and
// the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/auth"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository"
	"github.com/sakif/mentor-directory/internal/validate"
)

// MinPasswordLength applies to registration and password reset.
const MinPasswordLength = 8

// AccountService owns the account lifecycle: registration, login,
// verification and password reset.
type AccountService struct {
	accounts    repository.AccountRepository
	profiles    repository.ProfileRepository
	tokens      *auth.TokenService
	passwords   *auth.PasswordService
	notifier    Notifier
	emailDomain string
	logger      *slog.Logger
}

// NewAccountService wires the service. emailDomain, when set, is the only
// domain accounts may register with (e.g. "g.ucla.edu").
func NewAccountService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	notifier Notifier,
	emailDomain string,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:    accounts,
		profiles:    profiles,
		tokens:      tokens,
		passwords:   passwords,
		notifier:    notifier,
		emailDomain: normalizeDomain(emailDomain),
		logger:      logger,
	}
}

// AuthResult bundles an account with a freshly issued access token.
type AuthResult struct {
	Account *model.Account
	Token   string
}

// RegisterInput is a new account request. Year defaults to freshman.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Year        model.Year
	PhoneNumber string
}

// Register creates the account and its profile, sends a verification code
// and logs the new account in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if err := checkEmail(email, s.emailDomain); err != nil {
		return nil, err
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if in.Year == "" {
		in.Year = model.YearFreshman
	}
	if !in.Year.Valid() {
		return nil, apperror.ValidationFailed("year", "year must be one of freshman, sophomore, junior, senior")
	}
	if in.PhoneNumber != "" && !model.PhonePattern.MatchString(in.PhoneNumber) {
		return nil, apperror.ValidationFailed("phone_number", "phone_number must look like (012)345-6789")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	code := auth.NewCode()
	account := &model.Account{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	profile := &model.Profile{Year: in.Year, PhoneNumber: in.PhoneNumber, VerificationCode: &code}
	if err := s.accounts.CreateAccount(ctx, account, profile); err != nil {
		return nil, fmt.Errorf("service/account: creating account: %w", err)
	}

	s.logger.Info("account created", slog.String("accountID", account.ID))

	if err := s.notifier.SendVerification(ctx, account, code); err != nil {
		s.logger.Error("sending verification code", slog.String("accountID", account.ID), slog.Any("error", err))
	}
	return s.issue(account)
}

// Login checks an email and password pair. Every failure looks the same to
// the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := apperror.Unauthorized("invalid email or password")

	account, err := s.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("service/account: looking up account: %w", err)
	}
	if account.PasswordHash == "" {
		return nil, invalid
	}
	if err := s.passwords.Verify(account.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/account: verifying password: %w", err)
	}
	return s.issue(account)
}

// Verify consumes the account's verification code.
func (s *AccountService) Verify(ctx context.Context, accountID, code string) error {
	ok, err := s.profiles.VerifyProfile(ctx, accountID, code)
	if err != nil {
		return fmt.Errorf("service/account: verifying account %s: %w", accountID, err)
	}
	if !ok {
		return apperror.ValidationFailed("verification_code", "invalid verification code")
	}
	s.logger.Info("account verified", slog.String("accountID", accountID))
	return nil
}

// RequestPasswordReset issues a reset code for the account with email and
// hands it to the notifier. Unknown emails succeed silently.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, apperror.ErrNotFound) {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("service/account: looking up account: %w", err)
	}

	code := auth.NewCode()
	if err := s.profiles.SetPasswordResetCode(ctx, account.ID, code); err != nil {
		return fmt.Errorf("service/account: storing reset code: %w", err)
	}
	if err := s.notifier.SendPasswordReset(ctx, account, code); err != nil {
		return fmt.Errorf("service/account: sending reset code: %w", err)
	}
	return nil
}

// ResetPassword sets a new password if code is the account's current reset
// code. The code is cleared only on success.
func (s *AccountService) ResetPassword(ctx context.Context, accountID, code, password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return apperror.ValidationFailed("password", err.Error())
	}

	ok, err := s.profiles.ResetPassword(ctx, accountID, code, hash)
	if err != nil {
		return fmt.Errorf("service/account: resetting password for %s: %w", accountID, err)
	}
	if !ok {
		return apperror.ValidationFailed("code", "invalid or expired reset code")
	}
	s.logger.Info("password reset", slog.String("accountID", accountID))
	return nil
}

// LoginWithGoogle signs in the Google user, creating an already verified
// account without a password on first sign-in.
func (s *AccountService) LoginWithGoogle(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	if gu == nil {
		return nil, fmt.Errorf("service/account: Google user must not be nil")
	}
	if !gu.EmailVerified {
		return nil, apperror.Forbidden("Google account email is not verified")
	}
	if !allowedDomain(gu.Email, s.emailDomain) {
		return nil, apperror.Forbidden(fmt.Sprintf("only %s accounts may sign in", s.emailDomain))
	}

	account, err := s.accounts.GetAccountByEmail(ctx, gu.Email)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		account = &model.Account{Email: gu.Email, FirstName: gu.GivenName, LastName: gu.FamilyName}
		profile := &model.Profile{Year: model.YearFreshman, Verified: true}
		if err := s.accounts.CreateAccount(ctx, account, profile); err != nil {
			return nil, fmt.Errorf("service/account: creating Google account: %w", err)
		}
		s.logger.Info("account created via Google", slog.String("accountID", account.ID))
	default:
		return nil, fmt.Errorf("service/account: looking up account: %w", err)
	}
	return s.issue(account)
}

// Account returns the account with id.
func (s *AccountService) Account(ctx context.Context, id string) (*model.Account, error) {
	a, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/account: fetching account %s: %w", id, err)
	}
	return a, nil
}

func (s *AccountService) issue(account *model.Account) (*AuthResult, error) {
	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for %s: %w", account.ID, err)
	}
	return &AuthResult{Account: account, Token: token}, nil
}

func checkEmail(email, domain string) error {
	if !validate.Email(email) {
		return apperror.ValidationFailed("email", "email must be a valid email address")
	}
	if !allowedDomain(email, domain) {
		return apperror.ValidationFailed("email", fmt.Sprintf("email must be a %s address", domain))
	}
	return nil
}

func allowedDomain(email, domain string) bool {
	if domain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+domain)
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository"
)

// ProfileService reads and edits the signed-in user's own record.
type ProfileService struct {
	accounts    repository.AccountRepository
	profiles    repository.ProfileRepository
	emailDomain string
	logger      *slog.Logger
}

func NewProfileService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	emailDomain string,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		accounts:    accounts,
		profiles:    profiles,
		emailDomain: normalizeDomain(emailDomain),
		logger:      logger,
	}
}

// Me is an account together with its profile.
type Me struct {
	Account *model.Account
	Profile *model.Profile
}

// MeUpdate is a partial edit; nil fields are left alone. An empty
// PhoneNumber clears the stored number.
type MeUpdate struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Year        *model.Year
}

func (s *ProfileService) Me(ctx context.Context, accountID string) (*Me, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: fetching account %s: %w", accountID, err)
	}
	profile, err := s.profiles.GetProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: fetching profile for %s: %w", accountID, err)
	}
	return &Me{Account: account, Profile: profile}, nil
}

// UpdateMe validates every supplied field, then writes the account and the
// profile together. Any failure leaves the stored record unchanged.
func (s *ProfileService) UpdateMe(ctx context.Context, accountID string, u MeUpdate) (*Me, error) {
	me, err := s.Me(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		if err := checkEmail(email, s.emailDomain); err != nil {
			return nil, err
		}
		u.Email = &email
	}
	if u.PhoneNumber != nil && *u.PhoneNumber != "" && !model.PhonePattern.MatchString(*u.PhoneNumber) {
		return nil, apperror.ValidationFailed("phone_number", "phone_number must look like (012)345-6789")
	}
	if u.Year != nil && !u.Year.Valid() {
		return nil, apperror.ValidationFailed("year", "year must be one of freshman, sophomore, junior, senior")
	}

	if u.Email == nil && u.FirstName == nil && u.LastName == nil && u.PhoneNumber == nil && u.Year == nil {
		return me, nil
	}

	a, p := *me.Account, *me.Profile
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.FirstName != nil {
		a.FirstName = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		a.LastName = strings.TrimSpace(*u.LastName)
	}
	if u.PhoneNumber != nil {
		p.PhoneNumber = *u.PhoneNumber
	}
	if u.Year != nil {
		p.Year = *u.Year
	}
	if err := s.accounts.UpdateAccountProfile(ctx, &a, &p); err != nil {
		return nil, fmt.Errorf("service/profile: updating account %s: %w", accountID, err)
	}
	me.Account, me.Profile = &a, &p

	s.logger.Info("profile updated", slog.String("accountID", accountID))
	return me, nil
}

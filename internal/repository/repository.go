// Package repository declares the storage interfaces the services depend on.
// internal/repository/sqlite provides the only implementation.
package repository

import (
	"context"

	"github.com/sakif/mentor-directory/internal/model"
)

// AccountRepository stores accounts. Email lookups ignore case.
type AccountRepository interface {
	// CreateAccount inserts the account and its profile in one transaction.
	// A taken email yields apperror.ErrConflict and leaves storage untouched.
	CreateAccount(ctx context.Context, account *model.Account, profile *model.Profile) error
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	// UpdateAccountProfile stores both records in one transaction.
	UpdateAccountProfile(ctx context.Context, account *model.Account, profile *model.Profile) error
}

// ProfileRepository stores profiles. The code methods compare and clear in a
// single statement so a code can be consumed at most once.
type ProfileRepository interface {
	GetProfileByAccount(ctx context.Context, accountID string) (*model.Profile, error)
	// VerifyProfile marks the profile verified if code matches and clears it.
	// It reports false when the code does not match.
	VerifyProfile(ctx context.Context, accountID, code string) (bool, error)
	SetPasswordResetCode(ctx context.Context, accountID, code string) error
	// ResetPassword stores hash and clears the reset code if code matches.
	ResetPassword(ctx context.Context, accountID, code, hash string) (bool, error)
}

// MentorRepository stores mentors and their related lists.
type MentorRepository interface {
	// CreateOrActivateMentor returns the profile's mentor, creating it or
	// setting it active as needed.
	CreateOrActivateMentor(ctx context.Context, profileID string) (*model.Mentor, error)
	GetMentorByID(ctx context.Context, id string) (*model.Mentor, error)
	GetMentorByProfile(ctx context.Context, profileID string) (*model.Mentor, error)
	// UpdateMentor applies u atomically. Cardinality is checked inside the
	// transaction and any failure leaves the mentor unchanged.
	UpdateMentor(ctx context.Context, u model.MentorUpdate) (*model.Mentor, error)
}

// DirectoryReader materializes the searchable directory.
type DirectoryReader interface {
	// Snapshot returns every active mentor with its profile, names and
	// related lists, in creation order.
	Snapshot(ctx context.Context) ([]model.Mentor, error)
}

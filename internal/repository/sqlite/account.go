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

var _ repository.AccountRepository = (*DB)(nil)

const accountColumns = `id, email, password_hash, first_name, last_name, created_at, updated_at`

// CreateAccount inserts account and profile together. IDs and timestamps are
// assigned here and written back to both structs.
func (db *DB) CreateAccount(ctx context.Context, account *model.Account, profile *model.Profile) error {
	now := time.Now().UTC()
	account.ID = xid.New().String()
	account.CreatedAt, account.UpdatedAt = now, now

	profile.ID = xid.New().String()
	profile.AccountID = account.ID
	profile.CreatedAt, profile.UpdatedAt = now, now
	if profile.Year == "" {
		profile.Year = model.YearFreshman
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			account.ID, account.Email, account.PasswordHash,
			account.FirstName, account.LastName, account.CreatedAt, account.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("account", account.Email)
			}
			return fmt.Errorf("sqlite: inserting account: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (id, account_id, year, phone_number, verified,
			                       verification_code, password_reset_code, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			profile.ID, profile.AccountID, string(profile.Year), profile.PhoneNumber,
			profile.Verified, nullString(profile.VerificationCode), nullString(profile.PasswordResetCode),
			profile.CreatedAt, profile.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting profile for account %s: %w", account.ID, err)
		}
		return nil
	})
}

func (db *DB) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, err)
	}
	return a, nil
}

// GetAccountByEmail matches email without regard to case.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("account", email)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting account by email: %w", err)
	}
	return a, nil
}

// UpdateAccountProfile writes the account's editable fields and the
// profile's year and phone number in one transaction. Either both are
// stored or neither is.
func (db *DB) UpdateAccountProfile(ctx context.Context, account *model.Account, profile *model.Profile) error {
	now := time.Now().UTC()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateAccount(ctx, tx, account, now); err != nil {
			return err
		}
		return updateProfile(ctx, tx, profile, now)
	})
}

func updateAccount(ctx context.Context, q querier, account *model.Account, now time.Time) error {
	res, err := q.ExecContext(ctx,
		`UPDATE accounts SET email = ?, password_hash = ?, first_name = ?, last_name = ?, updated_at = ?
		 WHERE id = ?`,
		account.Email, account.PasswordHash, account.FirstName, account.LastName, now, account.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("account", account.Email)
		}
		return fmt.Errorf("sqlite: updating account %s: %w", account.ID, err)
	}
	if err := requireAffected(res, "account", account.ID); err != nil {
		return err
	}
	account.UpdatedAt = now
	return nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

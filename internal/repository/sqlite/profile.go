package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

func (db *DB) GetProfileByAccount(ctx context.Context, accountID string) (*model.Profile, error) {
	var (
		p            model.Profile
		year         string
		verify, pass sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, account_id, year, phone_number, verified, verification_code,
		        password_reset_code, created_at, updated_at
		 FROM profiles WHERE account_id = ?`,
		accountID,
	).Scan(&p.ID, &p.AccountID, &year, &p.PhoneNumber, &p.Verified, &verify, &pass, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("profile", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting profile for account %s: %w", accountID, err)
	}
	p.Year = model.Year(year)
	p.VerificationCode = stringPtr(verify)
	p.PasswordResetCode = stringPtr(pass)
	return &p, nil
}

// updateProfile writes the editable fields: year and phone number.
func updateProfile(ctx context.Context, q querier, profile *model.Profile, now time.Time) error {
	res, err := q.ExecContext(ctx,
		`UPDATE profiles SET year = ?, phone_number = ?, updated_at = ? WHERE id = ?`,
		string(profile.Year), profile.PhoneNumber, now, profile.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", profile.ID, err)
	}
	if err := requireAffected(res, "profile", profile.ID); err != nil {
		return err
	}
	profile.UpdatedAt = now
	return nil
}

func (db *DB) VerifyProfile(ctx context.Context, accountID, code string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE profiles SET verified = 1, verification_code = NULL, updated_at = ?
		 WHERE account_id = ? AND verification_code = ?`,
		time.Now().UTC(), accountID, code,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: verifying profile for account %s: %w", accountID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n == 1, nil
}

func (db *DB) SetPasswordResetCode(ctx context.Context, accountID, code string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE profiles SET password_reset_code = ?, updated_at = ? WHERE account_id = ?`,
		code, time.Now().UTC(), accountID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting reset code for account %s: %w", accountID, err)
	}
	return requireAffected(res, "profile", accountID)
}

// ResetPassword consumes the reset code and stores the new hash in one
// transaction. A wrong code changes nothing.
func (db *DB) ResetPassword(ctx context.Context, accountID, code, hash string) (bool, error) {
	var ok bool
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`UPDATE profiles SET password_reset_code = NULL, updated_at = ?
			 WHERE account_id = ? AND password_reset_code = ?`,
			now, accountID, code,
		)
		if err != nil {
			return fmt.Errorf("sqlite: consuming reset code: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
			hash, now, accountID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: storing new password for account %s: %w", accountID, err)
		}
		ok = true
		return nil
	})
	return ok, err
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
)

type resetTokenRepository struct {
	BaseRepository
}

func NewResetTokenRepository(base BaseRepository) repository.ResetTokenRepository {
	return &resetTokenRepository{base}
}

// Create stores a fresh reset code and deletes superseded ones, keeping at
// most one active code per user.
func (r *resetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM password_reset_tokens WHERE user_id = $1`, token.UserID); err != nil {
			return fmt.Errorf("failed to delete superseded reset tokens: %w", err)
		}

		if token.ID == uuid.Nil {
			token.ID = uuid.New()
		}
		token.CreatedAt = time.Now()

		query := `
			INSERT INTO password_reset_tokens (id, user_id, code, expires_at, used, created_at)
			VALUES ($1, $2, $3, $4, false, $5)
		`
		if _, err := tx.ExecContext(ctx, query,
			token.ID, token.UserID, token.Code, token.ExpiresAt, token.CreatedAt); err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}
		return nil
	})
}

// Redeem flips the used flag exactly once. An expired, already-used or
// unknown code leaves zero rows affected and fails.
func (r *resetTokenRepository) Redeem(ctx context.Context, userID uuid.UUID, code string) error {
	query := `
		UPDATE password_reset_tokens
		SET used = true
		WHERE user_id = $1
		AND code = $2
		AND used = false
		AND expires_at > NOW()
	`
	result, err := r.GetDB().ExecContext(ctx, query, userID, code)
	if err != nil {
		return fmt.Errorf("failed to redeem reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invalid or expired reset code")
	}
	return nil
}

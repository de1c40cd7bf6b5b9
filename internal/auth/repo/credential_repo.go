package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/oops"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/auth/entity"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/database"
)

// CredentialRepo reads and writes credentials on the users table using sqlx.
type CredentialRepo struct {
	db *sqlx.DB
}

func NewCredentialRepo(db *sqlx.DB) *CredentialRepo { return &CredentialRepo{db: db} }

// Create inserts a new user row carrying only the credential fields. The
// unique index on email decides concurrent registrations of one address.
func (r *CredentialRepo) Create(ctx context.Context, c *entity.Credential) error {
	const q = `INSERT INTO users (id, email, password, role, registered_at, created_at, updated_at)
		VALUES (:id, :email, :password, :role, :registered_at, :created_at, :updated_at)`
	now := c.RegisteredAt
	if now.IsZero() {
		now = time.Now().UTC()
		c.RegisteredAt = now
	}
	params := map[string]any{
		"id":            c.ID,
		"email":         c.Email,
		"password":      c.PasswordHash,
		"role":          c.Role,
		"registered_at": now,
		"created_at":    now,
		"updated_at":    now,
	}
	if _, err := r.db.NamedExecContext(ctx, q, params); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", c.Email, apperr.ErrConflict)
		}
		return oops.In("credential_repo").With("email", c.Email).Wrapf(err, "insert credential")
	}
	return nil
}

// GetByEmail returns the credential for email or apperr.ErrNotFound.
func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	q := r.db.Rebind(`SELECT id, email, password, role, registered_at FROM users WHERE email = ?`)
	var c entity.Credential
	if err := r.db.GetContext(ctx, &c, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, oops.In("credential_repo").Wrapf(err, "get credential by email")
	}
	return &c, nil
}

// UpdatePassword replaces the stored hash.
func (r *CredentialRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	q := r.db.Rebind(`UPDATE users SET password = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, hash, time.Now().UTC(), id)
	if err != nil {
		return oops.In("credential_repo").With("id", id).Wrapf(err, "update password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/utils"
)

// UserRepo persists application users.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrEmailExists  = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")
)

const userColumns = `id,email,password_hash,full_name,role,is_active,reset_token_hash,reset_expires_at,created_at,updated_at`

// Create inserts a user and returns its ID. Registration always creates
// regular users; administrators are seeded out of band.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		email, hash, fullName, role)
	if err != nil {
		// MySQL duplicate-key error code
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// List returns every user account, newest first. Admin use only.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		var (
			u         model.User
			resetHash sql.NullString
			resetExp  sql.NullTime
		)
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive,
			&resetHash, &resetExp, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserUpdate carries the account fields an admin may change. Nil
// means leave as is.
type UserUpdate struct {
	Email    *string
	FullName *string
	IsActive *bool
}

// Update applies a partial account update and returns the fresh row.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) (model.User, error) {
	var b setBuilder
	if upd.Email != nil {
		b.add("email", strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.FullName != nil {
		b.add("full_name", *upd.FullName)
	}
	if upd.IsActive != nil {
		b.add("is_active", *upd.IsActive)
	}
	if !b.empty() {
		// Whether the row exists is settled by the readback; a no-op
		// write of identical values also affects zero rows.
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+b.clause()+" WHERE id = ?", append(b.args, id)...)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				return model.User{}, ErrEmailExists
			}
			return model.User{}, err
		}
	}
	u, err := r.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// SetRole changes a user's role and returns the fresh row.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) (model.User, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role = ? WHERE id = ?", role, id); err != nil {
		return model.User{}, err
	}
	u, err := r.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// Deactivate disables an account. The row is kept so the user's
// tickets and comments stay attributable.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err == sql.ErrNoRows {
			return ErrUserNotFound
		}
	}
	return nil
}

// SetResetToken stores the hash and expiry of a pending password reset
// token, replacing any previous one.
func (r *UserRepo) SetResetToken(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_expires_at=? WHERE id=?",
		tokenHash, exp, userID)
	return err
}

// GetByResetToken returns the user holding a non-expired reset token
// with the given hash. sql.ErrNoRows is returned when the token is
// unknown or expired.
func (r *UserRepo) GetByResetToken(ctx context.Context, tokenHash string) (model.User, error) {
	u, err := r.scanOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE reset_token_hash=? LIMIT 1", tokenHash)
	if err != nil {
		return model.User{}, err
	}
	if u.ResetExpires == nil || time.Now().UTC().After(*u.ResetExpires) {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

// UpdatePassword replaces the password hash and clears any pending
// reset token in the same statement.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_expires_at=NULL WHERE id=?",
		hash, userID)
	return err
}

func (r *UserRepo) scanOne(ctx context.Context, query string, args ...interface{}) (model.User, error) {
	var (
		u         model.User
		resetHash sql.NullString
		resetExp  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.IsActive,
		&resetHash, &resetExp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if resetHash.Valid {
		h := resetHash.String
		u.ResetHash = &h
	}
	if resetExp.Valid {
		t := resetExp.Time
		u.ResetExpires = &t
	}
	return u, nil
}

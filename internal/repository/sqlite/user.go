package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio-backend/internal/apperror"
	"github.com/sakif/portfolio-backend/internal/model"
	"github.com/sakif/portfolio-backend/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, is_admin, github_id, created_at, updated_at, last_login`

// CreateUser inserts a new account. The id is generated here; username and
// email uniqueness are enforced by the schema, so a duplicate insert fails
// atomically with a conflict error.
func (db *DB) CreateUser(ctx context.Context, user *model.User, passwordHash string) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_admin, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		nullString(user.Email),
		passwordHash,
		user.IsAdmin,
		nullInt64(user.GitHubID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dup := constraintError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (db *DB) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE github_id = ?`, githubID)
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var (
		u         model.User
		email     sql.NullString
		githubID  sql.NullInt64
		lastLogin sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&email,
		&u.IsAdmin,
		&githubID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	u.Email = email.String
	u.GitHubID = githubID.Int64
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

// CredentialByUsername returns the stored password hash artifact. The hash
// leaves the repository only through this method, and only the credential
// store's Verify ever consumes it.
func (db *DB) CredentialByUsername(ctx context.Context, username string) (string, error) {
	var hash string
	err := db.conn.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = ?`, username,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NotFound("user", username)
		}
		return "", fmt.Errorf("sqlite: getting credential for %q: %w", username, err)
	}
	return hash, nil
}

func (db *DB) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var (
			u         model.User
			email     sql.NullString
			githubID  sql.NullInt64
			lastLogin sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Username, &email, &u.IsAdmin, &githubID,
			&u.CreatedAt, &u.UpdatedAt, &lastLogin); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		u.Email = email.String
		u.GitHubID = githubID.Int64
		if lastLogin.Valid {
			t := lastLogin.Time
			u.LastLogin = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser persists username, email, and the admin flag, bumping updated_at.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, is_admin = ?, updated_at = ? WHERE id = ?`,
		user.Username,
		nullString(user.Email),
		user.IsAdmin,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if dup := constraintError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	return requireRow(res, "user", user.ID)
}

func (db *DB) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}
	return requireRow(res, "user", id)
}

func (db *DB) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching last_login for user %s: %w", id, err)
	}
	return requireRow(res, "user", id)
}

// DeleteUser removes the account; the schema cascades to owned projects and
// page data.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	return requireRow(res, "user", id)
}

// requireRow converts a zero-row update/delete into a not-found error.
func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// nullString maps "" to NULL so the email UNIQUE constraint permits any
// number of accounts without an email.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

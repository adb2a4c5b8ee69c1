package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"financas/internal/core"
)

// CreateUser inserts the user row and seeds the given default
// categories and settings for the new id, all inside one transaction:
// either the account comes out fully provisioned or not at all.
func (r *SQLiteRepository) CreateUser(ctx context.Context, name, email, passwordHash string, categories []core.Category, settings core.Settings) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin registration: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return 0, core.ErrDuplicateEmail
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		name, email, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return 0, core.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch user id: %w", err)
	}

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (user_id, name, color, icon, is_default) VALUES (?, ?, ?, ?, ?)`,
			userID, c.Name, c.Color, c.Icon, c.IsDefault,
		); err != nil {
			return 0, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, currency, language, start_week_on) VALUES (?, ?, ?, ?)`,
		userID, settings.Currency, settings.Language, settings.StartWeekOn,
	); err != nil {
		return 0, fmt.Errorf("seed settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit registration: %w", err)
	}

	slog.InfoContext(ctx, "user created", "id", userID, "seeded_categories", len(categories))
	return userID, nil
}

// UserByEmail fetches a user by exact email match. Absence is a normal
// (nil, nil) result.
func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = ?`,
		email,
	))
}

// UserByID fetches a user by id. Absence is a normal (nil, nil) result.
func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE id = ?`,
		id,
	))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// EmailTaken reports whether another user (excludeID aside) already
// holds the given email.
func (r *SQLiteRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id != ?)`,
		email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// UpdateUserProfile applies a partial profile update. Nil fields are
// untouched; the statement is assembled from fixed column names only.
func (r *SQLiteRepository) UpdateUserProfile(ctx context.Context, id int64, name, email *string) (bool, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *email)
	}
	if len(sets) == 0 {
		return true, nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("profile rows affected: %w", err)
	}
	return n > 0, nil
}

// UpdatePasswordHash replaces the stored credential record.
func (r *SQLiteRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return nil
}

// SettingsByUser fetches the per-user settings row.
func (r *SQLiteRepository) SettingsByUser(ctx context.Context, userID int64) (*core.Settings, error) {
	var s core.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, currency, language, start_week_on FROM user_settings WHERE user_id = ?`,
		userID,
	).Scan(&s.UserID, &s.Currency, &s.Language, &s.StartWeekOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan settings: %w", err)
	}
	return &s, nil
}

// UpdateSettings overwrites the per-user settings row.
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE user_settings SET currency = ?, language = ?, start_week_on = ? WHERE user_id = ?`,
		s.Currency, s.Language, s.StartWeekOn, s.UserID,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

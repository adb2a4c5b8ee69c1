package storage

import (
	"context"
	"fmt"

	"financas/internal/core"
)

// CreateCategory inserts a category owned by userID.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, color, icon, is_default) VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.Color, c.Icon, c.IsDefault,
	)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch category id: %w", err)
	}
	return id, nil
}

// DeleteCategory removes a category scoped to its owner. Referencing
// transactions keep their rows; the schema nulls their category_id.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("category rows affected: %w", err)
	}
	return n > 0, nil
}

// CategoriesByUser lists a user's categories, defaults first.
func (r *SQLiteRepository) CategoriesByUser(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, color, icon, is_default
		 FROM categories WHERE user_id = ? ORDER BY is_default DESC, name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

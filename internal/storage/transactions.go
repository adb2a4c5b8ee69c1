package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"financas/internal/core"
)

const transactionColumns = `t.id, t.user_id, t.category_id, t.amount_cents, t.type, t.date, t.description, t.created_at,
	COALESCE(c.name, ''), COALESCE(c.color, ''), COALESCE(c.icon, '')`

// InsertTransaction stores a new ledger entry and returns its id.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, amount_cents, type, date, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.Amount.Cents, string(t.Type), t.Date.String(), t.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetch transaction id: %w", err)
	}

	slog.InfoContext(ctx, "transaction recorded",
		"id", id,
		"user_id", t.UserID,
		"type", string(t.Type),
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())
	return id, nil
}

// UpdateTransaction applies a partial update scoped to (id, owner).
// Supplied fields map onto a fixed set of parameterized assignments; a
// mismatched owner affects zero rows and reports false, not an error.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id, userID int64, ch core.TransactionChanges) (bool, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 7)
	if ch.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, ch.Amount.Cents)
	}
	if ch.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*ch.Type))
	}
	if ch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, ch.Date.String())
	}
	if ch.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *ch.CategoryID)
	}
	if ch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *ch.Description)
	}
	if len(sets) == 0 {
		return true, nil
	}
	args = append(args, id, userID)

	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transaction rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteTransaction removes a ledger entry scoped to (id, owner).
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transaction rows affected: %w", err)
	}
	return n > 0, nil
}

// TransactionByID fetches a single entry scoped to its owner. Absence
// is a normal (nil, nil) result.
func (r *SQLiteRepository) TransactionByID(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.id = ? AND t.user_id = ?`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	t, err := scanTransaction(rows)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RecentTransactions lists the newest entries for a user: date
// descending, then creation time, then id.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.user_id = ?
		 ORDER BY t.date DESC, t.created_at DESC, t.id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListTransactions lists a user's entries narrowed by the filter. The
// WHERE clause grows only from fixed, fully parameterized predicates.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		 FROM transactions t LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.user_id = ?`
	args := []any{userID}

	if f.Start != nil {
		query += " AND t.date >= ?"
		args = append(args, f.Start.String())
	}
	if f.End != nil {
		query += " AND t.date <= ?"
		args = append(args, f.End.String())
	}
	if f.Type != "" {
		query += " AND t.type = ?"
		args = append(args, string(f.Type))
	}
	if f.CategoryID != nil {
		query += " AND t.category_id = ?"
		args = append(args, *f.CategoryID)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY t.date DESC, t.created_at DESC, t.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullInt64
		typ        string
		date       string
	)
	if err := rows.Scan(&t.ID, &t.UserID, &categoryID, &t.Amount.Cents, &typ, &date, &t.Description,
		&t.CreatedAt, &t.CategoryName, &t.CategoryColor, &t.CategoryIcon); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	t.Type = core.TransactionType(typ)
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.Date = parsed
	return t, nil
}

package storage

import (
	"context"
	"fmt"

	"financas/internal/core"
)

// SumsByType returns the independent income and expense totals for all
// of a user's transactions dated at or before asOf (all when nil). A
// user with no transactions sums to zero on both sides.
func (r *SQLiteRepository) SumsByType(ctx context.Context, userID int64, asOf *core.Date) (income, expense core.Money, err error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if asOf != nil {
		query += " AND date <= ?"
		args = append(args, asOf.String())
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&income.Cents, &expense.Cents); err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum transactions: %w", err)
	}
	return income, expense, nil
}

// CategoryFlows returns the per-category income/expense breakdown for
// transactions inside [start, end]. Categories without activity in the
// window are omitted; uncategorized transactions never appear here.
func (r *SQLiteRepository) CategoryFlows(ctx context.Context, userID int64, start, end core.Date) ([]core.CategoryFlow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, c.color, c.icon,
			COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount_cents ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN t.type = 'expense' THEN t.amount_cents ELSE 0 END), 0) AS expense
		 FROM categories c
		 LEFT JOIN transactions t ON t.category_id = c.id
			AND t.user_id = ? AND t.date BETWEEN ? AND ?
		 WHERE c.user_id = ?
		 GROUP BY c.id, c.name, c.color, c.icon
		 HAVING income > 0 OR expense > 0
		 ORDER BY expense DESC, income DESC`,
		userID, start.String(), end.String(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("category flows: %w", err)
	}
	defer rows.Close()

	var flows []core.CategoryFlow
	for rows.Next() {
		var f core.CategoryFlow
		if err := rows.Scan(&f.Name, &f.Color, &f.Icon, &f.Income.Cents, &f.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan category flow: %w", err)
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// DailyFlows returns the per-day income/expense breakdown for
// transactions inside [start, end], ordered by date ascending.
func (r *SQLiteRepository) DailyFlows(ctx context.Context, userID int64, start, end core.Date) ([]core.DailyFlow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date,
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		 FROM transactions
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		 GROUP BY date
		 ORDER BY date`,
		userID, start.String(), end.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("daily flows: %w", err)
	}
	defer rows.Close()

	var flows []core.DailyFlow
	for rows.Next() {
		var (
			f    core.DailyFlow
			date string
		)
		if err := rows.Scan(&date, &f.Income.Cents, &f.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan daily flow: %w", err)
		}
		parsed, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse flow date %q: %w", date, err)
		}
		f.Date = parsed
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// CategoryStats returns per-category transaction counts and totals over
// an optional date window, ordered by descending expense then income.
// Every category of the user appears, including inactive ones.
func (r *SQLiteRepository) CategoryStats(ctx context.Context, userID int64, start, end *core.Date) ([]core.CategoryStat, error) {
	join := `LEFT JOIN transactions t ON t.category_id = c.id AND t.user_id = ?`
	args := []any{userID}
	if start != nil {
		join += " AND t.date >= ?"
		args = append(args, start.String())
	}
	if end != nil {
		join += " AND t.date <= ?"
		args = append(args, end.String())
	}
	args = append(args, userID)

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.color, c.icon,
			COUNT(t.id),
			COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount_cents ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN t.type = 'expense' THEN t.amount_cents ELSE 0 END), 0) AS total_expense
		 FROM categories c
		 `+join+`
		 WHERE c.user_id = ?
		 GROUP BY c.id, c.name, c.color, c.icon
		 ORDER BY total_expense DESC, total_income DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var stats []core.CategoryStat
	for rows.Next() {
		var s core.CategoryStat
		if err := rows.Scan(&s.CategoryID, &s.Name, &s.Color, &s.Icon,
			&s.Count, &s.TotalIncome.Cents, &s.TotalExpense.Cents); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

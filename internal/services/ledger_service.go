package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

// RecordInput carries the fields of a new ledger entry.
type RecordInput struct {
	Amount      core.Money
	Type        core.TransactionType
	Date        core.Date
	CategoryID  *int64
	Description string
}

// LedgerService stores transactions and computes the aggregate reports
// the dashboard renders. Monthly summaries are cached per user+month
// with concurrent computations deduplicated; any write drops the
// owner's cached reports.
type LedgerService struct {
	repo    *storage.SQLiteRepository
	reports *cache.LRUCache[core.MonthlySummary]
	group   singleflight.Group
	logger  *log.Logger
}

// NewLedgerService constructs a LedgerService. reports may be nil to
// disable summary caching.
func NewLedgerService(repo *storage.SQLiteRepository, reports *cache.LRUCache[core.MonthlySummary], logger *log.Logger) *LedgerService {
	return &LedgerService{
		repo:    repo,
		reports: reports,
		logger:  logger.WithComponent("ledger"),
	}
}

// Record validates and stores a new transaction. Amounts must be a
// positive magnitude; direction is carried solely by the type.
func (s *LedgerService) Record(ctx context.Context, userID int64, in RecordInput) (int64, error) {
	t := core.Transaction{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Type:        in.Type,
		Date:        in.Date,
		Description: in.Description,
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.InsertTransaction(ctx, t)
	if err != nil {
		return 0, err
	}
	s.invalidate(userID)
	return id, nil
}

// Update applies a partial update scoped to (id, owner). Cross-user
// writes affect zero rows and report false.
func (s *LedgerService) Update(ctx context.Context, id, userID int64, ch core.TransactionChanges) (bool, error) {
	if ch.Amount != nil {
		if err := ch.Amount.Validate(); err != nil {
			return false, err
		}
	}
	if ch.Type != nil {
		if err := ch.Type.Validate(); err != nil {
			return false, err
		}
	}
	if ch.Date != nil {
		if err := ch.Date.Validate(); err != nil {
			return false, err
		}
	}
	ok, err := s.repo.UpdateTransaction(ctx, id, userID, ch)
	if err != nil {
		return false, err
	}
	if ok {
		s.invalidate(userID)
	}
	return ok, nil
}

// Delete removes a transaction scoped to (id, owner).
func (s *LedgerService) Delete(ctx context.Context, id, userID int64) (bool, error) {
	ok, err := s.repo.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if ok {
		s.invalidate(userID)
	}
	return ok, nil
}

// Balance sums income and expense independently over all transactions
// dated at or before asOf (all when nil). An empty ledger yields zeros,
// never an error.
func (s *LedgerService) Balance(ctx context.Context, userID int64, asOf *core.Date) (core.BalanceReport, error) {
	income, expense, err := s.repo.SumsByType(ctx, userID, asOf)
	if err != nil {
		return core.BalanceReport{}, err
	}
	return core.BalanceReport{
		Balance:      core.Money{Cents: income.Cents - expense.Cents},
		TotalIncome:  income,
		TotalExpense: expense,
	}, nil
}

// MonthlySummary computes the report for one calendar month: balance
// as of the month's last day, per-category and per-day breakdowns.
func (s *LedgerService) MonthlySummary(ctx context.Context, userID int64, year, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("%w: month %d", core.ErrInvalidDate, month)
	}
	if s.reports == nil {
		return s.buildMonthlySummary(ctx, userID, year, month)
	}

	key := reportKey(userID, year, month)
	if cached, ok := s.reports.Get(key); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		summary, err := s.buildMonthlySummary(ctx, userID, year, month)
		if err != nil {
			return nil, err
		}
		s.reports.Set(key, summary)
		return summary, nil
	})
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return v.(core.MonthlySummary), nil
}

func (s *LedgerService) buildMonthlySummary(ctx context.Context, userID int64, year, month int) (core.MonthlySummary, error) {
	start, end := core.MonthRange(year, month)

	balance, err := s.Balance(ctx, userID, &end)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	categories, err := s.repo.CategoryFlows(ctx, userID, start, end)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	days, err := s.repo.DailyFlows(ctx, userID, start, end)
	if err != nil {
		return core.MonthlySummary{}, err
	}

	return core.MonthlySummary{
		Year:       year,
		Month:      month,
		Start:      start,
		End:        end,
		Balance:    balance,
		Categories: categories,
		Days:       days,
	}, nil
}

// CategoryStatistics returns per-category counts and totals over an
// optional date window, ordered by descending expense then income.
func (s *LedgerService) CategoryStatistics(ctx context.Context, userID int64, start, end *core.Date) ([]core.CategoryStat, error) {
	return s.repo.CategoryStats(ctx, userID, start, end)
}

// Recent lists the user's newest transactions, most recent first.
func (s *LedgerService) Recent(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.RecentTransactions(ctx, userID, limit)
}

// Transactions lists the user's entries narrowed by the filter.
func (s *LedgerService) Transactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, f)
}

// CreateCategory adds a user-defined category.
func (s *LedgerService) CreateCategory(ctx context.Context, userID int64, name, color, icon string) (int64, error) {
	c := core.Category{UserID: userID, Name: name, Color: color, Icon: icon}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return s.repo.CreateCategory(ctx, c)
}

// DeleteCategory removes a category scoped to its owner; referencing
// transactions keep their rows with the reference nulled.
func (s *LedgerService) DeleteCategory(ctx context.Context, id, userID int64) (bool, error) {
	ok, err := s.repo.DeleteCategory(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if ok {
		s.invalidate(userID)
	}
	return ok, nil
}

// Categories lists the user's categories, defaults first.
func (s *LedgerService) Categories(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.repo.CategoriesByUser(ctx, userID)
}

func (s *LedgerService) invalidate(userID int64) {
	if s.reports != nil {
		s.reports.DeletePrefix(fmt.Sprintf("%d:", userID))
	}
}

func reportKey(userID int64, year, month int) string {
	return fmt.Sprintf("%d:%04d-%02d", userID, year, month)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
)

func record(t *testing.T, app *testApp, userID int64, cents int64, typ core.TransactionType, date string) int64 {
	t.Helper()
	day, err := core.ParseDate(date)
	require.NoError(t, err)
	id, err := app.ledger.Record(context.Background(), userID, RecordInput{
		Amount: core.Money{Cents: cents}, Type: typ, Date: day,
	})
	require.NoError(t, err)
	return id
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")
	day := core.NewDate(2024, 5, 10)

	_, err := app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: 0}, Type: core.Expense, Date: day,
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: -100}, Type: core.Expense, Date: day,
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: 100}, Type: "transfer", Date: day,
	})
	assert.ErrorIs(t, err, core.ErrInvalidType)

	_, err = app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: 100}, Type: core.Expense,
	})
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestBalanceEmptyLedger(t *testing.T) {
	app := newTestApp(t)
	userID := registerTestUser(t, app, "a@x.com")

	report, err := app.ledger.Balance(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Equal(t, core.BalanceReport{}, report)
}

func TestBalanceIdentity(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")

	record(t, app, userID, 100000, core.Income, "2024-05-01")
	record(t, app, userID, 25050, core.Expense, "2024-05-15")
	record(t, app, userID, 333, core.Expense, "2024-05-20")

	report, err := app.ledger.Balance(ctx, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, report.TotalIncome.Cents-report.TotalExpense.Cents, report.Balance.Cents)
	assert.Equal(t, int64(100000), report.TotalIncome.Cents)
	assert.Equal(t, int64(25383), report.TotalExpense.Cents)
	assert.Equal(t, int64(74617), report.Balance.Cents)
}

func TestBalanceAsOfCutoff(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")

	record(t, app, userID, 100000, core.Income, "2024-05-01")
	record(t, app, userID, 50000, core.Expense, "2024-07-01")

	cutoff := core.NewDate(2024, 6, 30)
	report, err := app.ledger.Balance(ctx, userID, &cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), report.Balance.Cents)
	assert.Zero(t, report.TotalExpense.Cents)
}

func TestMonthlySummaryLeapFebruary(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")

	record(t, app, userID, 1000, core.Income, "2024-02-01")
	record(t, app, userID, 500, core.Expense, "2024-02-29") // leap day
	record(t, app, userID, 9999, core.Expense, "2024-03-01")

	summary, err := app.ledger.MonthlySummary(ctx, userID, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", summary.Start.String())
	assert.Equal(t, "2024-02-29", summary.End.String())

	require.Len(t, summary.Days, 2)
	assert.Equal(t, "2024-02-29", summary.Days[1].Date.String())
	assert.Equal(t, int64(500), summary.Days[1].Expense.Cents)

	// Balance is as-of month end: the March entry stays out.
	assert.Equal(t, int64(1000), summary.Balance.TotalIncome.Cents)
	assert.Equal(t, int64(500), summary.Balance.TotalExpense.Cents)
	assert.Equal(t, int64(500), summary.Balance.Balance.Cents)
}

func TestMonthlySummaryNonLeapFebruary(t *testing.T) {
	app := newTestApp(t)
	userID := registerTestUser(t, app, "a@x.com")

	summary, err := app.ledger.MonthlySummary(context.Background(), userID, 2023, 2)
	require.NoError(t, err)
	assert.Equal(t, "2023-02-01", summary.Start.String())
	assert.Equal(t, "2023-02-28", summary.End.String())
	assert.Empty(t, summary.Days)
	assert.Empty(t, summary.Categories)
}

func TestMonthlySummaryDecemberRollsYear(t *testing.T) {
	app := newTestApp(t)
	userID := registerTestUser(t, app, "a@x.com")

	summary, err := app.ledger.MonthlySummary(context.Background(), userID, 2024, 12)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-01", summary.Start.String())
	assert.Equal(t, "2024-12-31", summary.End.String())
}

func TestMonthlySummaryInvalidMonth(t *testing.T) {
	app := newTestApp(t)
	userID := registerTestUser(t, app, "a@x.com")

	for _, month := range []int{0, 13, -1} {
		_, err := app.ledger.MonthlySummary(context.Background(), userID, 2024, month)
		assert.ErrorIs(t, err, core.ErrInvalidDate, "month %d", month)
	}
}

func TestMonthlySummaryCacheInvalidation(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")

	record(t, app, userID, 1000, core.Income, "2024-05-01")

	first, err := app.ledger.MonthlySummary(ctx, userID, 2024, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), first.Balance.TotalIncome.Cents)

	// A write must drop the cached report, not serve the stale one.
	record(t, app, userID, 2000, core.Income, "2024-05-02")

	second, err := app.ledger.MonthlySummary(ctx, userID, 2024, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), second.Balance.TotalIncome.Cents)
}

func TestMonthlySummaryPerCategoryBreakdown(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")
	categories, err := app.ledger.Categories(ctx, userID)
	require.NoError(t, err)
	catID := categories[0].ID

	day := core.NewDate(2024, 5, 10)
	_, err = app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: 7500}, Type: core.Expense, Date: day, CategoryID: &catID,
	})
	require.NoError(t, err)

	summary, err := app.ledger.MonthlySummary(ctx, userID, 2024, 5)
	require.NoError(t, err)
	require.Len(t, summary.Categories, 1, "only categories with activity appear")
	assert.Equal(t, categories[0].Name, summary.Categories[0].Name)
	assert.Equal(t, int64(7500), summary.Categories[0].Expense.Cents)
}

func TestUpdateScopedToOwner(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	owner := registerTestUser(t, app, "a@x.com")
	intruder := registerTestUser(t, app, "b@x.com")
	id := record(t, app, owner, 1000, core.Expense, "2024-05-10")

	amount := core.Money{Cents: 1}
	ok, err := app.ledger.Update(ctx, id, intruder, core.TransactionChanges{Amount: &amount})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = app.ledger.Delete(ctx, id, intruder)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = app.ledger.Delete(ctx, id, owner)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateValidatesSuppliedFields(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")
	id := record(t, app, userID, 1000, core.Expense, "2024-05-10")

	bad := core.Money{Cents: -5}
	_, err := app.ledger.Update(ctx, id, userID, core.TransactionChanges{Amount: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	badType := core.TransactionType("transfer")
	_, err = app.ledger.Update(ctx, id, userID, core.TransactionChanges{Type: &badType})
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestDeleteCategoryKeepsTransactions(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")

	catID, err := app.ledger.CreateCategory(ctx, userID, "Viagens", "#123456", "✈️")
	require.NoError(t, err)

	day := core.NewDate(2024, 5, 10)
	txID, err := app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: 4200}, Type: core.Expense, Date: day, CategoryID: &catID,
	})
	require.NoError(t, err)

	ok, err := app.ledger.DeleteCategory(ctx, catID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	recent, err := app.ledger.Recent(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, txID, recent[0].ID)
	assert.Nil(t, recent[0].CategoryID)
}

func TestRecentDefaultsLimit(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")

	record(t, app, userID, 100, core.Expense, "2024-05-10")
	record(t, app, userID, 200, core.Expense, "2024-05-11")

	recent, err := app.ledger.Recent(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
	assert.Equal(t, "2024-05-11", recent[0].Date.String())
}

func TestCategoryStatisticsOrdering(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	userID := registerTestUser(t, app, "a@x.com")
	categories, err := app.ledger.Categories(ctx, userID)
	require.NoError(t, err)

	big, small := categories[0].ID, categories[1].ID
	day := core.NewDate(2024, 5, 10)
	_, err = app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: 9000}, Type: core.Expense, Date: day, CategoryID: &big,
	})
	require.NoError(t, err)
	_, err = app.ledger.Record(ctx, userID, RecordInput{
		Amount: core.Money{Cents: 100}, Type: core.Expense, Date: day, CategoryID: &small,
	})
	require.NoError(t, err)

	stats, err := app.ledger.CategoryStatistics(ctx, userID, nil, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(stats), 2)
	assert.Equal(t, int64(9000), stats[0].TotalExpense.Cents, "biggest spender first")
	assert.Equal(t, int64(100), stats[1].TotalExpense.Cents)
}

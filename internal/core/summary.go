package core

import "time"

// BalanceReport is the three-figure aggregate over a ledger slice:
// Balance is always TotalIncome minus TotalExpense.
type BalanceReport struct {
	Balance      Money
	TotalIncome  Money
	TotalExpense Money
}

// CategoryFlow is the income/expense pair for one category inside a
// reporting window.
type CategoryFlow struct {
	Name    string
	Color   string
	Icon    string
	Income  Money
	Expense Money
}

// DailyFlow is the income/expense pair for a single calendar day.
type DailyFlow struct {
	Date    Date
	Income  Money
	Expense Money
}

// MonthlySummary aggregates one calendar month: the balance as of the
// month's last day, a per-category breakdown and a per-day breakdown
// restricted to the month.
type MonthlySummary struct {
	Year       int
	Month      int // 1-12
	Start      Date
	End        Date
	Balance    BalanceReport
	Categories []CategoryFlow
	Days       []DailyFlow
}

// CategoryStat is a per-category transaction count and totals over an
// optional date window.
type CategoryStat struct {
	CategoryID   int64
	Name         string
	Color        string
	Icon         string
	Count        int64
	TotalIncome  Money
	TotalExpense Money
}

// MonthRange returns the first and last calendar day of the given month.
// Day zero of the following month normalizes to the month's true last
// day, so February lands on 28 or 29 and December rolls the year.
func MonthRange(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	end := Date{Time: time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)}
	return start, end
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	_, end := MonthRange(year, month)
	return end.Day()
}

package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Date is a calendar date. The time-of-day portion is always zero UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Color     string
		Icon      string
		IsDefault bool
	}

	Transaction struct {
		ID          int64
		UserID      int64
		CategoryID  *int64
		Amount      Money
		Type        TransactionType
		Date        Date
		Description string
		CreatedAt   time.Time

		// Joined category fields, populated by list queries. Empty when
		// the transaction has no category.
		CategoryName  string
		CategoryColor string
		CategoryIcon  string
	}

	// TransactionChanges carries a partial update: nil fields are left
	// untouched. CategoryID uses a double pointer so "set to null" and
	// "leave alone" stay distinguishable.
	TransactionChanges struct {
		Amount      *Money
		Type        *TransactionType
		Date        *Date
		CategoryID  **int64
		Description *string
	}

	// TransactionFilter narrows a transaction listing. Zero values mean
	// "no restriction"; Limit <= 0 falls back to a default.
	TransactionFilter struct {
		Start      *Date
		End        *Date
		Type       TransactionType
		CategoryID *int64
		Limit      int
	}

	Settings struct {
		UserID      int64
		Currency    string
		Language    string
		StartWeekOn string
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyName          = errors.New("empty name")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

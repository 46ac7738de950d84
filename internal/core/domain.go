package core

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the wire format for all dates in the API.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	User struct {
		ID           int64  `json:"id"`
		ActualName   string `json:"actual_name"`
		Username     string `json:"username"`
		PasswordHash string `json:"-"`
	}

	Expense struct {
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Notes    string  `json:"notes"`
		UserID   int64   `json:"user_id"`
	}

	// CategorySummary is one row of the by-category aggregation.
	CategorySummary struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}

	// MonthlySummary is one row of the by-month aggregation.
	// MonthName carries the calendar month name plus year, e.g. "March 2024".
	MonthlySummary struct {
		ExpenseMonth int     `json:"expense_month"`
		ExpenseYear  int     `json:"expense_year"`
		MonthName    string  `json:"month_name"`
		Total        float64 `json:"total"`
	}
)

// ParseDate parses a YYYY-MM-DD string. Anything else is ErrInvalidDate.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q, use YYYY-MM-DD", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if e.UserID <= 0 {
		return fmt.Errorf("%w: missing user_id", ErrInvalidExpense)
	}
	return nil
}

// CanonicalCategory normalizes a category to its canonical capitalization:
// first letter upper, the rest lower. Any string is accepted, there is no
// fixed category set.
func CanonicalCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ValidatePassword enforces the signup password policy: at least 8 characters
// with one uppercase letter, one lowercase letter and one digit. Checks run in
// order and the first failure is reported.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters", ErrWeakPassword)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrWeakPassword)
	case !lower:
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrWeakPassword)
	case !digit:
		return fmt.Errorf("%w: must contain at least one digit", ErrWeakPassword)
	}
	return nil
}

// MonthName renders a (year, month) pair the way the monthly summary exposes
// it, e.g. "February 2024".
func MonthName(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

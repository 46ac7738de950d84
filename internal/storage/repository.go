// Package storage persists users and expense line items in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the database at dbPath, runs migrations
// and returns a ready repository.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return New(db), nil
}

// New wraps an already-open database. Used by Open and by tests that supply
// their own connection.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type userRow struct {
	ID           int64  `db:"id"`
	ActualName   string `db:"actual_name"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

type expenseRow struct {
	Amount   float64 `db:"amount"`
	Category string  `db:"category"`
	Notes    string  `db:"notes"`
	UserID   int64   `db:"user_id"`
}

// CreateUser inserts a new user and returns it with the generated id.
func (r *Repository) CreateUser(ctx context.Context, actualName, username, passwordHash string) (core.User, error) {
	query, args, err := sq.Insert("users").
		Columns("actual_name", "username", "password_hash").
		Values(actualName, username, passwordHash).
		ToSql()
	if err != nil {
		return core.User{}, fmt.Errorf("build insert user: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)

	return core.User{
		ID:           id,
		ActualName:   actualName,
		Username:     username,
		PasswordHash: passwordHash,
	}, nil
}

// GetUserByUsername fetches a user by exact, case-sensitive username.
// sql.ErrNoRows stays in the error chain so callers can detect absence.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	query, args, err := sq.Select("id", "actual_name", "username", "password_hash").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return core.User{}, fmt.Errorf("build select user: %w", err)
	}

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return core.User{}, fmt.Errorf("get user %q: %w", username, err)
	}

	return core.User{
		ID:           row.ID,
		ActualName:   row.ActualName,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
	}, nil
}

// ExpensesForDate returns all expense rows for (userID, date). No rows is not
// an error: the result is an empty, non-nil slice.
func (r *Repository) ExpensesForDate(ctx context.Context, userID int64, date string) ([]core.Expense, error) {
	query, args, err := sq.Select("amount", "category", "notes", "user_id").
		From("expenses").
		Where(sq.Eq{"expense_date": date, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select expenses: %w", err)
	}

	var rows []expenseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select expenses for %s: %w", date, err)
	}

	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = core.Expense{
			Amount:   row.Amount,
			Category: row.Category,
			Notes:    row.Notes,
			UserID:   row.UserID,
		}
	}
	return expenses, nil
}

// ReplaceExpensesForDate deletes every row for (userID, date) and inserts the
// given items, all inside one transaction. A failure anywhere leaves the day
// untouched. Returns the number of rows inserted.
func (r *Repository) ReplaceExpensesForDate(ctx context.Context, userID int64, date string, expenses []core.Expense) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Delete("expenses").
		Where(sq.Eq{"expense_date": date, "user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("delete expenses for %s: %w", date, err)
	}

	insert := sq.Insert("expenses").
		Columns("expense_date", "amount", "category", "notes", "user_id")
	for _, e := range expenses {
		insert = insert.Values(date, e.Amount, e.Category, e.Notes, e.UserID)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert expenses for %s: %w", date, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace for %s: %w", date, err)
	}

	slog.InfoContext(ctx, "Expenses replaced",
		"user_id", userID,
		"expense_date", date,
		"count", len(expenses))

	return len(expenses), nil
}

type categorySumRow struct {
	Category string  `db:"category"`
	Total    float64 `db:"total"`
}

// SummaryByCategory sums amounts per category over an inclusive date range.
// Dates are stored as YYYY-MM-DD text, so lexicographic comparison is
// chronological.
func (r *Repository) SummaryByCategory(ctx context.Context, userID int64, startDate, endDate string) ([]core.CategorySummary, error) {
	query, args, err := sq.Select("category", "SUM(amount) AS total").
		From("expenses").
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.GtOrEq{"expense_date": startDate},
			sq.LtOrEq{"expense_date": endDate},
		}).
		GroupBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category summary: %w", err)
	}

	var rows []categorySumRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select category summary: %w", err)
	}

	summary := make([]core.CategorySummary, len(rows))
	for i, row := range rows {
		summary[i] = core.CategorySummary{Category: row.Category, Total: row.Total}
	}
	return summary, nil
}

type monthSumRow struct {
	ExpenseMonth int     `db:"expense_month"`
	ExpenseYear  int     `db:"expense_year"`
	Total        float64 `db:"total"`
}

// SummaryByMonth sums amounts per (year, month) across the user's whole
// history, most recent month first.
func (r *Repository) SummaryByMonth(ctx context.Context, userID int64) ([]core.MonthlySummary, error) {
	query, args, err := sq.Select(
		"CAST(strftime('%m', expense_date) AS INTEGER) AS expense_month",
		"CAST(strftime('%Y', expense_date) AS INTEGER) AS expense_year",
		"SUM(amount) AS total",
	).
		From("expenses").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("expense_year", "expense_month").
		OrderBy("expense_year DESC", "expense_month DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build month summary: %w", err)
	}

	var rows []monthSumRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select month summary: %w", err)
	}

	summary := make([]core.MonthlySummary, len(rows))
	for i, row := range rows {
		summary[i] = core.MonthlySummary{
			ExpenseMonth: row.ExpenseMonth,
			ExpenseYear:  row.ExpenseYear,
			MonthName:    core.MonthName(row.ExpenseYear, row.ExpenseMonth),
			Total:        row.Total,
		}
	}
	return summary, nil
}

// IsNotFound reports whether err means a row was absent.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

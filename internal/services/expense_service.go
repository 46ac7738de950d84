package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// ExpenseService orchestrates day-scoped expense replacement, read-back and
// the two aggregation views. Every operation takes the token-verified caller
// id and refuses to touch another user's data.
type ExpenseService struct {
	store  *storage.Repository
	events *amqp.Client
}

// NewExpenseService builds the service. events may be nil, in which case
// replacement events are simply not published.
func NewExpenseService(store *storage.Repository, events *amqp.Client) *ExpenseService {
	return &ExpenseService{
		store:  store,
		events: events,
	}
}

// GetExpensesForDate returns all of userID's expenses on the given day.
// An empty day yields an empty list, never an error.
func (s *ExpenseService) GetExpensesForDate(ctx context.Context, callerID, userID int64, date string) ([]core.Expense, error) {
	if callerID != userID {
		return nil, core.ErrForbidden
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.store.ExpensesForDate(ctx, userID, d.String())
}

// ReplaceExpensesForDate replaces the whole day: existing rows for
// (owner, date) are deleted and the given items inserted, atomically. The
// owner is taken from the first item; every item must belong to the caller or
// the whole batch is rejected before anything is written. Categories are
// canonicalized on the way in. Returns the number of rows inserted.
func (s *ExpenseService) ReplaceExpensesForDate(ctx context.Context, callerID int64, date string, expenses []core.Expense) (int, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return 0, err
	}
	if len(expenses) == 0 {
		return 0, core.ErrEmptyBatch
	}

	owner := expenses[0].UserID
	if owner != callerID {
		return 0, core.ErrForbidden
	}

	items := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		if e.UserID != callerID {
			return 0, core.ErrForbidden
		}
		if err := e.Validate(); err != nil {
			return 0, err
		}
		e.Category = core.CanonicalCategory(e.Category)
		items[i] = e
	}

	count, err := s.store.ReplaceExpensesForDate(ctx, owner, d.String(), items)
	if err != nil {
		return 0, fmt.Errorf("replace expenses: %w", err)
	}

	s.publishReplaced(ctx, owner, d.String(), count)

	return count, nil
}

// SummaryByCategory aggregates amount sums per category over an inclusive
// date range.
func (s *ExpenseService) SummaryByCategory(ctx context.Context, callerID, userID int64, startDate, endDate string) ([]core.CategorySummary, error) {
	if callerID != userID {
		return nil, core.ErrForbidden
	}
	start, err := core.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := core.ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	return s.store.SummaryByCategory(ctx, userID, start.String(), end.String())
}

// SummaryByMonth aggregates amount sums per calendar month across the user's
// whole history, most recent month first.
func (s *ExpenseService) SummaryByMonth(ctx context.Context, callerID, userID int64) ([]core.MonthlySummary, error) {
	if callerID != userID {
		return nil, core.ErrForbidden
	}
	return s.store.SummaryByMonth(ctx, userID)
}

// publishReplaced emits the replacement event. Best effort: a broker failure
// never fails the write that already committed.
func (s *ExpenseService) publishReplaced(ctx context.Context, userID int64, date string, count int) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpensesReplaced(ctx, userID, date, count); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expenses replaced event",
			"error", err,
			"user_id", userID,
			"expense_date", date)
	}
}

// Close releases the storage and broker connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}

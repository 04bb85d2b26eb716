package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"bursar/internal/config"
	"bursar/internal/core"
	"bursar/internal/storage"
)

// ExpenseService records school running costs; expenses only feed the
// financial reports and never touch pupil balances.
type ExpenseService struct {
	store    *storage.MemoryLedger
	cfg      *config.Config
	audit    *AuditTrail
	validate *validator.Validate
	now      func() time.Time
}

func NewExpenseService(store *storage.MemoryLedger, cfg *config.Config, audit *AuditTrail) *ExpenseService {
	return &ExpenseService{
		store:    store,
		cfg:      cfg,
		audit:    audit,
		validate: validator.New(),
		now:      time.Now,
	}
}

type ExpenseRequest struct {
	Item   string    `validate:"required,min=2,max=200"`
	Amount int64     `validate:"required,gt=0"`
	Date   core.Date `validate:"required"`
	Notes  string
}

func (s *ExpenseService) RecordExpense(ctx context.Context, req ExpenseRequest) (core.Expense, error) {
	if err := s.check(req); err != nil {
		return core.Expense{}, err
	}
	expense := core.Expense{
		ID:     uuid.NewString(),
		Item:   req.Item,
		Amount: core.Money{Cents: req.Amount},
		Date:   req.Date,
		Notes:  req.Notes,
	}
	if err := s.store.PutExpense(ctx, expense); err != nil {
		return core.Expense{}, fmt.Errorf("record expense: %w", err)
	}
	s.audit.Record(ctx, AuditCreate, "EXPENSE", expense.ID, expense.Item)
	slog.InfoContext(ctx, "Expense recorded",
		"expense_id", expense.ID,
		"item", expense.Item,
		"amount", expense.Amount.Cents)
	return expense, nil
}

func (s *ExpenseService) AmendExpense(ctx context.Context, expenseID string, req ExpenseRequest) (core.Expense, error) {
	if err := s.check(req); err != nil {
		return core.Expense{}, err
	}
	expense := core.Expense{
		ID:     expenseID,
		Item:   req.Item,
		Amount: core.Money{Cents: req.Amount},
		Date:   req.Date,
		Notes:  req.Notes,
	}
	if err := s.store.PutExpense(ctx, expense); err != nil {
		return core.Expense{}, fmt.Errorf("amend expense: %w", err)
	}
	s.audit.Record(ctx, AuditUpdate, "EXPENSE", expense.ID, expense.Item)
	return expense, nil
}

func (s *ExpenseService) RemoveExpense(ctx context.Context, expenseID string) error {
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}
	s.audit.Record(ctx, AuditDelete, "EXPENSE", expenseID, "")
	return nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context) []core.Expense {
	return s.store.ListExpenses(ctx)
}

func (s *ExpenseService) check(req ExpenseRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	if req.Amount > s.cfg.MaxExpenseCents {
		return fmt.Errorf("%w: amount %s seems unusually high", core.ErrInvalidArgument, core.Money{Cents: req.Amount})
	}
	now := s.now()
	if req.Date.After(now) {
		return fmt.Errorf("%w: expense date cannot be in the future", core.ErrInvalidArgument)
	}
	if req.Date.Before(now.Add(-s.cfg.ExpenseMaxAge)) {
		return fmt.Errorf("%w: expense date is too far in the past", core.ErrInvalidArgument)
	}
	return nil
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bursar/internal/core"
	"bursar/internal/storage"
)

func TestRecordExpense(t *testing.T) {
	store := storage.NewMemoryLedger()
	svc := NewExpenseService(store, testConfig(), NewAuditTrail())
	svc.now = fixedNow
	ctx := context.Background()

	expense, err := svc.RecordExpense(ctx, ExpenseRequest{
		Item:   "Teacher Salaries",
		Amount: 2_500_000,
		Date:   core.NewDate(2024, 5, 5),
		Notes:  "April salaries",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, expense.ID)

	listed := svc.ListExpenses(ctx)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(2_500_000), listed[0].Amount.Cents)
}

func TestRecordExpenseRejections(t *testing.T) {
	store := storage.NewMemoryLedger()
	svc := NewExpenseService(store, testConfig(), NewAuditTrail())
	svc.now = fixedNow
	ctx := context.Background()

	cases := []struct {
		name string
		req  ExpenseRequest
	}{
		{"short item", ExpenseRequest{Item: "E", Amount: 1000, Date: core.NewDate(2024, 5, 1)}},
		{"zero amount", ExpenseRequest{Item: "Electricity", Amount: 0, Date: core.NewDate(2024, 5, 1)}},
		{"unusually high", ExpenseRequest{Item: "Electricity", Amount: 50_000_001, Date: core.NewDate(2024, 5, 1)}},
		{"future date", ExpenseRequest{Item: "Electricity", Amount: 1000, Date: core.NewDate(2024, 7, 1)}},
		{"too old", ExpenseRequest{Item: "Electricity", Amount: 1000, Date: core.NewDate(2020, 5, 1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordExpense(ctx, tc.req)
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
		})
	}
	assert.Empty(t, svc.ListExpenses(ctx))
}

func TestAmendAndRemoveExpense(t *testing.T) {
	store := storage.NewMemoryLedger()
	svc := NewExpenseService(store, testConfig(), NewAuditTrail())
	svc.now = fixedNow
	ctx := context.Background()

	expense, err := svc.RecordExpense(ctx, ExpenseRequest{
		Item: "Water Bill", Amount: 80000, Date: core.NewDate(2024, 5, 4),
	})
	require.NoError(t, err)

	amended, err := svc.AmendExpense(ctx, expense.ID, ExpenseRequest{
		Item: "Water Bill", Amount: 85000, Date: core.NewDate(2024, 5, 4), Notes: "meter re-read",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(85000), amended.Amount.Cents)
	require.Len(t, svc.ListExpenses(ctx), 1)

	require.NoError(t, svc.RemoveExpense(ctx, expense.ID))
	assert.Empty(t, svc.ListExpenses(ctx))
	assert.Error(t, svc.RemoveExpense(ctx, expense.ID))
}

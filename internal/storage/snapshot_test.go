package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bursar/internal/core"
)

func TestSnapshotRoundTrip(t *testing.T) {
	m := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, m.AddPayment(ctx, core.Payment{
		ID: "pay-1", PupilID: "pupil-1",
		Amount:        core.Money{Cents: 50000},
		Date:          core.NewDate(2024, 5, 1),
		Type:          core.PaymentFees,
		ReceiptNumber: "RCP-2024-001",
	}))
	require.NoError(t, m.PutExpense(ctx, core.Expense{
		ID: "exp-1", Item: "Chalk and Dusters", Amount: core.Money{Cents: 20000}, Date: core.NewDate(2024, 5, 2),
	}))

	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, SaveSnapshot(path, m.Export(ctx)))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)

	restored := NewMemoryLedger()
	require.NoError(t, restored.Import(ctx, loaded))

	pupil, err := restored.GetPupil(ctx, "pupil-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), pupil.TotalPaid.Cents)
	assert.Equal(t, int64(200000), pupil.Balance.Cents)
	assert.Len(t, restored.ListPayments(ctx, ""), 1)
	assert.Len(t, restored.ListClasses(ctx), 2)
	assert.Len(t, restored.ListExpenses(ctx), 1)

	mismatch, err := restored.ReconcilePupil(ctx, "pupil-1", false)
	require.NoError(t, err)
	assert.Nil(t, mismatch)
}

func TestImportRejectsDanglingReferences(t *testing.T) {
	ctx := context.Background()

	m := NewMemoryLedger()
	err := m.Import(ctx, &Snapshot{
		Pupils: []core.Pupil{{
			ID: "pupil-1", Name: "Abeni Adebayo", ClassID: "missing",
			GuardianName: "Mr. Adebayo", GuardianContact: "123-456-7890",
			Bursary: core.Bursary{Type: core.BursaryNone},
		}},
	})
	assert.ErrorIs(t, err, ErrClassNotFound)

	m = NewMemoryLedger()
	err = m.Import(ctx, &Snapshot{
		Payments: []core.Payment{{
			ID: "pay-1", PupilID: "ghost",
			Amount: core.Money{Cents: 1000},
			Date:   core.NewDate(2024, 5, 1),
			Type:   core.PaymentFees,
		}},
	})
	assert.ErrorIs(t, err, ErrPupilNotFound)
}

func TestLoadSnapshotErrors(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"bursar/internal/core"
)

// Snapshot is the on-disk exchange format for a whole ledger, one array
// per collection. Pupil totals are carried exactly as exported so the
// reconciler can judge them against the payment ledger after import.
type Snapshot struct {
	Classes  []core.SchoolClass `json:"classes"`
	Pupils   []core.Pupil       `json:"pupils"`
	Payments []core.Payment     `json:"payments"`
	Expenses []core.Expense     `json:"expenses"`
}

func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func SaveSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Import loads a snapshot verbatim. Cached pupil totals are NOT
// recomputed here; judging them is the reconciler's job.
func (m *MemoryLedger) Import(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range snap.Classes {
		if err := c.Validate(); err != nil {
			return err
		}
		m.classes[c.ID] = c
	}
	for _, p := range snap.Pupils {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := m.classes[p.ClassID]; !ok {
			return fmt.Errorf("pupil %s class %s: %w", p.ID, p.ClassID, ErrClassNotFound)
		}
		m.pupils[p.ID] = p
	}
	for _, p := range snap.Payments {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := m.pupils[p.PupilID]; !ok {
			return fmt.Errorf("payment %s pupil %s: %w", p.ID, p.PupilID, ErrPupilNotFound)
		}
		m.payments[p.ID] = p
	}
	for _, e := range snap.Expenses {
		if err := e.Validate(); err != nil {
			return err
		}
		m.expenses[e.ID] = e
	}
	return nil
}

// Export copies the whole ledger into a snapshot.
func (m *MemoryLedger) Export(ctx context.Context) *Snapshot {
	return &Snapshot{
		Classes:  m.ListClasses(ctx),
		Pupils:   m.ListPupils(ctx, ""),
		Payments: m.ListPayments(ctx, ""),
		Expenses: m.ListExpenses(ctx),
	}
}

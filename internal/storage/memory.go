// Package storage holds the in-memory ledger store. Every payment
// mutation and its balance effect on the owning pupil happen inside one
// critical section, so a payment can never exist without its effect on
// the cached totals, or vice versa.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"bursar/internal/core"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrPupilNotFound   = errors.New("pupil not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrDuplicateID     = errors.New("duplicate id")
)

type MemoryLedger struct {
	mu       sync.RWMutex
	classes  map[string]core.SchoolClass
	pupils   map[string]core.Pupil
	payments map[string]core.Payment
	expenses map[string]core.Expense
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		classes:  make(map[string]core.SchoolClass),
		pupils:   make(map[string]core.Pupil),
		payments: make(map[string]core.Payment),
		expenses: make(map[string]core.Expense),
	}
}

// PutClass creates or replaces a class record.
func (m *MemoryLedger) PutClass(_ context.Context, c core.SchoolClass) error {
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[c.ID] = c
	return nil
}

func (m *MemoryLedger) GetClass(_ context.Context, id string) (core.SchoolClass, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[id]
	if !ok {
		return core.SchoolClass{}, fmt.Errorf("class %s: %w", id, ErrClassNotFound)
	}
	return c, nil
}

func (m *MemoryLedger) ListClasses(_ context.Context) []core.SchoolClass {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.SchoolClass, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddPupil stores a new pupil. The balance is derived on the spot from
// the class fee, the bursary and whatever was already paid, so a freshly
// enrolled pupil always satisfies the ledger invariants.
func (m *MemoryLedger) AddPupil(_ context.Context, p core.Pupil) (core.Pupil, error) {
	if err := p.Validate(); err != nil {
		return core.Pupil{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.pupils[p.ID]; exists {
		return core.Pupil{}, fmt.Errorf("pupil %s: %w", p.ID, ErrDuplicateID)
	}
	class, ok := m.classes[p.ClassID]
	if !ok {
		return core.Pupil{}, fmt.Errorf("class %s: %w", p.ClassID, ErrClassNotFound)
	}
	fee, err := core.ExpectedFee(class.TermlyFee, p.Bursary)
	if err != nil {
		return core.Pupil{}, err
	}
	p.Balance = fee.Sub(p.TotalPaid)
	m.pupils[p.ID] = p
	return p, nil
}

// UpdatePupil replaces a pupil's descriptive fields, class and bursary.
// TotalPaid stays whatever the ledger says; the balance is recomputed
// against the (possibly new) expected fee.
func (m *MemoryLedger) UpdatePupil(_ context.Context, p core.Pupil) (core.Pupil, error) {
	if err := p.Validate(); err != nil {
		return core.Pupil{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.pupils[p.ID]
	if !ok {
		return core.Pupil{}, fmt.Errorf("pupil %s: %w", p.ID, ErrPupilNotFound)
	}
	class, ok := m.classes[p.ClassID]
	if !ok {
		return core.Pupil{}, fmt.Errorf("class %s: %w", p.ClassID, ErrClassNotFound)
	}
	fee, err := core.ExpectedFee(class.TermlyFee, p.Bursary)
	if err != nil {
		return core.Pupil{}, err
	}
	p.TotalPaid = existing.TotalPaid
	p.Balance = fee.Sub(p.TotalPaid)
	m.pupils[p.ID] = p
	return p, nil
}

func (m *MemoryLedger) GetPupil(_ context.Context, id string) (core.Pupil, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pupils[id]
	if !ok {
		return core.Pupil{}, fmt.Errorf("pupil %s: %w", id, ErrPupilNotFound)
	}
	return p, nil
}

// ListPupils returns pupils sorted by name; classID narrows to one class,
// empty means all.
func (m *MemoryLedger) ListPupils(_ context.Context, classID string) []core.Pupil {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Pupil, 0, len(m.pupils))
	for _, p := range m.pupils {
		if classID == "" || p.ClassID == classID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeletePupil removes the pupil and, by policy, their payment history.
func (m *MemoryLedger) DeletePupil(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pupils[id]; !ok {
		return fmt.Errorf("pupil %s: %w", id, ErrPupilNotFound)
	}
	delete(m.pupils, id)
	for pid, pay := range m.payments {
		if pay.PupilID == id {
			delete(m.payments, pid)
		}
	}
	return nil
}

// AddPayment inserts the payment and applies its balance effect to the
// owning pupil as one atomic unit.
func (m *MemoryLedger) AddPayment(_ context.Context, p core.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.payments[p.ID]; exists {
		return fmt.Errorf("payment %s: %w", p.ID, ErrDuplicateID)
	}
	pupil, ok := m.pupils[p.PupilID]
	if !ok {
		return fmt.Errorf("pupil %s: %w", p.PupilID, ErrPupilNotFound)
	}
	paid, balance, err := core.ApplyPayment(pupil.TotalPaid, pupil.Balance, p.Amount)
	if err != nil {
		return fmt.Errorf("pupil %s: %w", p.PupilID, err)
	}
	pupil.TotalPaid, pupil.Balance = paid, balance
	m.pupils[p.PupilID] = pupil
	m.payments[p.ID] = p
	return nil
}

// AmendPayment replaces a payment's amount, date, type and notes,
// reverting the old amount and applying the new one in the same critical
// section. Moving a payment to another pupil is not supported.
func (m *MemoryLedger) AmendPayment(_ context.Context, p core.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.payments[p.ID]
	if !ok {
		return fmt.Errorf("payment %s: %w", p.ID, ErrPaymentNotFound)
	}
	if old.PupilID != p.PupilID {
		return fmt.Errorf("%w: payment %s cannot change pupil", core.ErrInvalidArgument, p.ID)
	}
	pupil, ok := m.pupils[old.PupilID]
	if !ok {
		return fmt.Errorf("pupil %s: %w", old.PupilID, ErrPupilNotFound)
	}
	paid, balance, err := core.RevertPayment(pupil.TotalPaid, pupil.Balance, old.Amount)
	if err != nil {
		return fmt.Errorf("pupil %s: %w", old.PupilID, err)
	}
	paid, balance, err = core.ApplyPayment(paid, balance, p.Amount)
	if err != nil {
		return fmt.Errorf("pupil %s: %w", old.PupilID, err)
	}
	pupil.TotalPaid, pupil.Balance = paid, balance
	m.pupils[old.PupilID] = pupil
	m.payments[p.ID] = p
	return nil
}

// VoidPayment deletes a payment and reverts its balance effect.
func (m *MemoryLedger) VoidPayment(_ context.Context, id string) (core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.payments[id]
	if !ok {
		return core.Payment{}, fmt.Errorf("payment %s: %w", id, ErrPaymentNotFound)
	}
	pupil, ok := m.pupils[old.PupilID]
	if !ok {
		return core.Payment{}, fmt.Errorf("pupil %s: %w", old.PupilID, ErrPupilNotFound)
	}
	paid, balance, err := core.RevertPayment(pupil.TotalPaid, pupil.Balance, old.Amount)
	if err != nil {
		return core.Payment{}, fmt.Errorf("pupil %s: %w", old.PupilID, err)
	}
	pupil.TotalPaid, pupil.Balance = paid, balance
	m.pupils[old.PupilID] = pupil
	delete(m.payments, id)
	return old, nil
}

func (m *MemoryLedger) GetPayment(_ context.Context, id string) (core.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return core.Payment{}, fmt.Errorf("payment %s: %w", id, ErrPaymentNotFound)
	}
	return p, nil
}

// ListPayments returns payments newest first; pupilID narrows to one
// pupil, empty means all.
func (m *MemoryLedger) ListPayments(_ context.Context, pupilID string) []core.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		if pupilID == "" || p.PupilID == pupilID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LastReceiptNumber returns the lexicographically highest receipt number
// on record, used to seed the issuer after loading a snapshot.
func (m *MemoryLedger) LastReceiptNumber(_ context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last string
	for _, p := range m.payments {
		if p.ReceiptNumber > last {
			last = p.ReceiptNumber
		}
	}
	return last
}

func (m *MemoryLedger) PutExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = e
	return nil
}

func (m *MemoryLedger) DeleteExpense(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, ErrExpenseNotFound)
	}
	delete(m.expenses, id)
	return nil
}

func (m *MemoryLedger) ListExpenses(_ context.Context) []core.Expense {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ReconcilePupil compares the pupil's cached totals against a full
// recompute from the payment ledger. A nil mismatch means the caches are
// good. With repair set, diverged caches are overwritten with the ledger
// values inside the same critical section.
func (m *MemoryLedger) ReconcilePupil(_ context.Context, id string, repair bool) (*core.TotalsMismatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pupil, ok := m.pupils[id]
	if !ok {
		return nil, fmt.Errorf("pupil %s: %w", id, ErrPupilNotFound)
	}
	class, ok := m.classes[pupil.ClassID]
	if !ok {
		return nil, fmt.Errorf("class %s: %w", pupil.ClassID, ErrClassNotFound)
	}
	var payments []core.Payment
	for _, p := range m.payments {
		if p.PupilID == id {
			payments = append(payments, p)
		}
	}
	paid, balance, err := core.RecomputeFromLedger(class.TermlyFee, pupil.Bursary, payments)
	if err != nil {
		return nil, fmt.Errorf("pupil %s: %w", id, err)
	}
	if paid == pupil.TotalPaid && balance == pupil.Balance {
		return nil, nil
	}
	mismatch := &core.TotalsMismatch{
		PupilID:       id,
		CachedPaid:    pupil.TotalPaid,
		CachedBalance: pupil.Balance,
		LedgerPaid:    paid,
		LedgerBalance: balance,
	}
	if repair {
		pupil.TotalPaid, pupil.Balance = paid, balance
		m.pupils[id] = pupil
	}
	return mismatch, nil
}

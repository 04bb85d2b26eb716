package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bursar/internal/core"
	"bursar/internal/storage"
)

// Reconciler verifies every pupil's cached totals against a recompute
// from the payment ledger. The ledger is the source of truth; cached
// totals are a fast path that this sweep keeps honest. With repair set,
// diverged caches are overwritten with the recomputed values.
type Reconciler struct {
	store  *storage.MemoryLedger
	repair bool
}

func NewReconciler(store *storage.MemoryLedger, repair bool) *Reconciler {
	return &Reconciler{store: store, repair: repair}
}

// Sweep checks all pupils and returns the mismatches found, sorted by
// pupil id. A non-empty result means an upstream writer skipped the
// atomic update discipline; callers should treat it as ErrInconsistentState.
func (r *Reconciler) Sweep(ctx context.Context) ([]core.TotalsMismatch, error) {
	pupils := r.store.ListPupils(ctx, "")

	var mu sync.Mutex
	var mismatches []core.TotalsMismatch

	g, ctx := errgroup.WithContext(ctx)
	for _, pupil := range pupils {
		pupil := pupil
		g.Go(func() error {
			mismatch, err := r.store.ReconcilePupil(ctx, pupil.ID, r.repair)
			if err != nil {
				return fmt.Errorf("reconcile pupil %s: %w", pupil.ID, err)
			}
			if mismatch != nil {
				mu.Lock()
				mismatches = append(mismatches, *mismatch)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].PupilID < mismatches[j].PupilID })
	for _, m := range mismatches {
		slog.ErrorContext(ctx, "Cached totals diverged from ledger",
			"pupil_id", m.PupilID,
			"cached_paid", m.CachedPaid.Cents,
			"ledger_paid", m.LedgerPaid.Cents,
			"cached_balance", m.CachedBalance.Cents,
			"ledger_balance", m.LedgerBalance.Cents,
			"repaired", r.repair,
			"error", core.ErrInconsistentState)
	}
	return mismatches, nil
}

// Run sweeps on an interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Reconciler started", "interval", interval, "repair", r.repair)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			mismatches, err := r.Sweep(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Reconciliation sweep failed", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Reconciliation sweep complete", "mismatches", len(mismatches))
		}
	}
}

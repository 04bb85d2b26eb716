// bursar-check loads an exported ledger snapshot, verifies every pupil's
// cached totals against the payment ledger and logs the school financial
// summary. Exit code 1 means the snapshot holds inconsistent totals,
// 2 means it could not be loaded at all.
package main

import (
	"os"

	"bursar/internal/cli"
	"bursar/internal/services"
	"bursar/internal/storage"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	snap, err := storage.LoadSnapshot(cfg.SnapshotPath)
	if err != nil {
		logger.Error("Failed to load ledger snapshot", "path", cfg.SnapshotPath, "error", err)
		os.Exit(2)
	}

	store := storage.NewMemoryLedger()
	if err := store.Import(ctx, snap); err != nil {
		logger.Error("Failed to import ledger snapshot", "path", cfg.SnapshotPath, "error", err)
		os.Exit(2)
	}
	logger.Info("Ledger snapshot loaded",
		"path", cfg.SnapshotPath,
		"classes", len(snap.Classes),
		"pupils", len(snap.Pupils),
		"payments", len(snap.Payments),
		"expenses", len(snap.Expenses))

	reconciler := services.NewReconciler(store, cfg.ReconcileRepair)
	mismatches, err := reconciler.Sweep(ctx)
	if err != nil {
		logger.Error("Reconciliation sweep failed", "error", err)
		os.Exit(2)
	}

	summary := services.NewReportService(store).Summary(ctx)
	logger.Info("Financial summary",
		"currency", cfg.Currency,
		"total_income", summary.TotalIncome.String(),
		"total_expenses", summary.TotalExpenses.String(),
		"net_balance", summary.NetBalance.String())
	for _, class := range summary.ClassIncome {
		logger.Info("Class income", "class", class.Name, "total", class.Total.String())
	}

	if len(mismatches) > 0 {
		logger.Error("Ledger check failed", "mismatches", len(mismatches), "repaired", cfg.ReconcileRepair)
		os.Exit(1)
	}
	logger.Info("Ledger check passed", "pupils", len(snap.Pupils))
}

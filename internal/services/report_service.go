package services

import (
	"context"
	"fmt"

	"bursar/internal/core"
	"bursar/internal/storage"
)

// ReportService derives the read-side views: school summary, class
// breakdown and per-pupil statements. Everything is recomputed on read.
type ReportService struct {
	store *storage.MemoryLedger
}

func NewReportService(store *storage.MemoryLedger) *ReportService {
	return &ReportService{store: store}
}

// Summary aggregates income, expenses and the class-wise breakdown.
func (s *ReportService) Summary(ctx context.Context) core.FinancialSummary {
	payments := s.store.ListPayments(ctx, "")

	income := core.SchoolTotal(payments)
	var spent core.Money
	for _, e := range s.store.ListExpenses(ctx) {
		spent = spent.Add(e.Amount)
	}

	classes := s.store.ListClasses(ctx)
	breakdown := make([]core.ClassIncome, 0, len(classes))
	for _, class := range classes {
		members := make(map[string]struct{})
		for _, p := range s.store.ListPupils(ctx, class.ID) {
			members[p.ID] = struct{}{}
		}
		breakdown = append(breakdown, core.ClassIncome{
			ClassID: class.ID,
			Name:    class.Name,
			Total:   core.ClassTotal(payments, members),
		})
	}

	return core.FinancialSummary{
		TotalIncome:   income,
		TotalExpenses: spent,
		NetBalance:    income.Sub(spent),
		ClassIncome:   breakdown,
	}
}

// PupilStatement builds the complete financial picture for one pupil:
// expected fee, discount, status and payment history.
func (s *ReportService) PupilStatement(ctx context.Context, pupilID string) (core.PupilStatement, error) {
	pupil, err := s.store.GetPupil(ctx, pupilID)
	if err != nil {
		return core.PupilStatement{}, err
	}
	class, err := s.store.GetClass(ctx, pupil.ClassID)
	if err != nil {
		return core.PupilStatement{}, err
	}
	fee, err := core.ExpectedFee(class.TermlyFee, pupil.Bursary)
	if err != nil {
		return core.PupilStatement{}, fmt.Errorf("pupil %s: %w", pupilID, err)
	}
	discount, err := core.BursaryDiscount(class.TermlyFee, pupil.Bursary)
	if err != nil {
		return core.PupilStatement{}, fmt.Errorf("pupil %s: %w", pupilID, err)
	}
	return core.PupilStatement{
		Pupil:       pupil,
		ClassName:   class.Name,
		ExpectedFee: fee,
		Discount:    discount,
		Status:      core.PaymentStatusOf(pupil.TotalPaid, pupil.Balance),
		Payments:    s.store.ListPayments(ctx, pupilID),
	}, nil
}

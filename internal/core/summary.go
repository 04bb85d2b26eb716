package core

// ClassIncome is the collected amount for a single class.
type ClassIncome struct {
	ClassID string `json:"classId"`
	Name    string `json:"name"`
	Total   Money  `json:"total"`
}

// FinancialSummary is the school-level report: everything collected,
// everything spent, and the per-class breakdown.
type FinancialSummary struct {
	TotalIncome   Money         `json:"totalIncome"`
	TotalExpenses Money         `json:"totalExpenses"`
	NetBalance    Money         `json:"netBalance"`
	ClassIncome   []ClassIncome `json:"classIncome"`
}

// PupilStatement is a pupil's full financial picture for one term.
type PupilStatement struct {
	Pupil       Pupil         `json:"pupil"`
	ClassName   string        `json:"className"`
	ExpectedFee Money         `json:"expectedFee"`
	Discount    Money         `json:"discount"`
	Status      PaymentStatus `json:"status"`
	Payments    []Payment     `json:"payments"`
}

// TotalsMismatch describes a pupil whose cached totals diverged from the
// ledger. Ledger values are authoritative.
type TotalsMismatch struct {
	PupilID       string `json:"pupilId"`
	CachedPaid    Money  `json:"cachedPaid"`
	CachedBalance Money  `json:"cachedBalance"`
	LedgerPaid    Money  `json:"ledgerPaid"`
	LedgerBalance Money  `json:"ledgerBalance"`
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	BursaryNone    BursaryType = "None"
	BursaryPartial BursaryType = "Partial"
	BursaryFull    BursaryType = "Full"
)

const (
	PaymentFees    PaymentType = "Fees"
	PaymentLunch   PaymentType = "Lunch"
	PaymentUniform PaymentType = "Uniform"
	PaymentOther   PaymentType = "Other"
)

const (
	StatusPending  PaymentStatus = "Pending"
	StatusPartial  PaymentStatus = "Partial"
	StatusPaid     PaymentStatus = "Paid"
	StatusOverpaid PaymentStatus = "Overpaid"
)

type (
	BursaryType   string
	PaymentType   string
	PaymentStatus string

	Date struct {
		time.Time
	}

	// Money is an amount in the smallest currency unit.
	Money struct {
		Cents int64
	}

	SchoolClass struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		TermlyFee Money  `json:"termlyFee"`
	}

	// Bursary is the financial-aid discount attached to a pupil,
	// expressed as a percentage of the class termly fee.
	Bursary struct {
		Type       BursaryType `json:"bursaryType"`
		Percentage int         `json:"bursaryPercentage"`
		Reason     string      `json:"bursaryReason,omitempty"`
	}

	// Pupil carries cached running totals. TotalPaid must always equal the
	// sum of the pupil's ledger amounts, and Balance must equal
	// expected fee minus TotalPaid; the payment ledger is authoritative.
	Pupil struct {
		ID              string  `json:"id"`
		Name            string  `json:"name"`
		ClassID         string  `json:"classId"`
		GuardianName    string  `json:"guardianName"`
		GuardianContact string  `json:"guardianContact"`
		Bursary         Bursary `json:"bursary"`
		TotalPaid       Money   `json:"totalPaid"`
		Balance         Money   `json:"balance"`
	}

	Payment struct {
		ID            string      `json:"id"`
		PupilID       string      `json:"pupilId"`
		Amount        Money       `json:"amount"`
		Date          Date        `json:"date"`
		Type          PaymentType `json:"type"`
		ReceiptNumber string      `json:"receiptNumber,omitempty"`
		Notes         string      `json:"notes,omitempty"`
	}

	Expense struct {
		ID     string `json:"id"`
		Item   string `json:"item"`
		Amount Money  `json:"amount"`
		Date   Date   `json:"date"`
		Notes  string `json:"notes,omitempty"`
	}
)

var (
	// ErrInvalidArgument is the root of the precondition-violation family;
	// check it with errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInconsistentState reports that a pupil's cached totals disagree
	// with the recomputed ledger values.
	ErrInconsistentState = errors.New("cached totals inconsistent with payment ledger")

	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	ErrNegativeFee       = fmt.Errorf("%w: termly fee cannot be negative", ErrInvalidArgument)
	ErrInvalidPercentage = fmt.Errorf("%w: bursary percentage must be between 0 and 100", ErrInvalidArgument)
	ErrBursaryMismatch   = fmt.Errorf("%w: bursary percentage does not match bursary type", ErrInvalidArgument)
	ErrInvalidDate       = fmt.Errorf("%w: date cannot be zero", ErrInvalidArgument)
	ErrEmptyName         = fmt.Errorf("%w: name must be at least 2 characters", ErrInvalidArgument)
	ErrEmptyItem         = fmt.Errorf("%w: expense item must be at least 2 characters", ErrInvalidArgument)
)

// NewDate creates a calendar date; time-of-day is always midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Year returns the calendar year, used for receipt-number scoping.
func (d Date) Year() int {
	return d.Time.Year()
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, ErrInvalidArgument)
	}
	d.Time = t
	return nil
}

func (t PaymentType) Validate() error {
	switch t {
	case PaymentFees, PaymentLunch, PaymentUniform, PaymentOther:
		return nil
	default:
		return fmt.Errorf("%w: unknown payment type %q", ErrInvalidArgument, string(t))
	}
}

// Validate checks the type/percentage coherence rules. In strict mode a
// Partial bursary must stay strictly between the boundaries; in lenient
// mode boundary values are tolerated (Normalize maps them to None/Full).
func (b Bursary) Validate(strict bool) error {
	if b.Percentage < 0 || b.Percentage > 100 {
		return fmt.Errorf("percentage %d: %w", b.Percentage, ErrInvalidPercentage)
	}
	switch b.Type {
	case BursaryNone:
		if b.Percentage != 0 {
			return fmt.Errorf("type None with percentage %d: %w", b.Percentage, ErrBursaryMismatch)
		}
	case BursaryFull:
		if b.Percentage != 100 {
			return fmt.Errorf("type Full with percentage %d: %w", b.Percentage, ErrBursaryMismatch)
		}
	case BursaryPartial:
		if strict && (b.Percentage == 0 || b.Percentage == 100) {
			return fmt.Errorf("type Partial with boundary percentage %d: %w", b.Percentage, ErrBursaryMismatch)
		}
	default:
		return fmt.Errorf("%w: unknown bursary type %q", ErrInvalidArgument, string(b.Type))
	}
	return nil
}

// Normalize maps boundary Partial percentages onto the equivalent
// None/Full types. Other values pass through unchanged.
func (b Bursary) Normalize() Bursary {
	if b.Type != BursaryPartial {
		return b
	}
	switch b.Percentage {
	case 0:
		b.Type = BursaryNone
	case 100:
		b.Type = BursaryFull
	}
	return b
}

func (c SchoolClass) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: class id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: class name is required", ErrInvalidArgument)
	}
	if c.TermlyFee.Cents < 0 {
		return fmt.Errorf("class %s: %w", c.ID, ErrNegativeFee)
	}
	return nil
}

func (p Pupil) Validate() error {
	if len(strings.TrimSpace(p.Name)) < 2 {
		return fmt.Errorf("pupil name: %w", ErrEmptyName)
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("%w: pupil name too long (max 100 characters)", ErrInvalidArgument)
	}
	if strings.TrimSpace(p.ClassID) == "" {
		return fmt.Errorf("%w: pupil class id is required", ErrInvalidArgument)
	}
	if len(strings.TrimSpace(p.GuardianName)) < 2 {
		return fmt.Errorf("guardian name: %w", ErrEmptyName)
	}
	if len(strings.TrimSpace(p.GuardianContact)) < 10 {
		return fmt.Errorf("%w: guardian contact must be at least 10 characters", ErrInvalidArgument)
	}
	if err := p.Bursary.Validate(false); err != nil {
		return fmt.Errorf("pupil %s: %w", p.ID, err)
	}
	if p.TotalPaid.Cents < 0 {
		return fmt.Errorf("%w: total paid cannot be negative", ErrInvalidArgument)
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.PupilID) == "" {
		return fmt.Errorf("%w: payment pupil id is required", ErrInvalidArgument)
	}
	if p.Amount.Cents <= 0 {
		return fmt.Errorf("payment amount %d: %w", p.Amount.Cents, ErrInvalidAmount)
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	return p.Type.Validate()
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Item)) < 2 {
		return ErrEmptyItem
	}
	if len(e.Item) > 200 {
		return fmt.Errorf("%w: expense item too long (max 200 characters)", ErrInvalidArgument)
	}
	if e.Amount.Cents <= 0 {
		return fmt.Errorf("expense amount %d: %w", e.Amount.Cents, ErrInvalidAmount)
	}
	return e.Date.Validate()
}

// Package services orchestrates the fee ledger: request validation,
// receipt issuance, audit and reporting on top of the in-memory store.
// All derived money values come from internal/core; nothing here
// duplicates the fee arithmetic.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"bursar/internal/config"
	"bursar/internal/core"
	"bursar/internal/receipt"
	"bursar/internal/storage"
)

// LedgerService handles pupil enrollment and the payment lifecycle.
type LedgerService struct {
	store    *storage.MemoryLedger
	cfg      *config.Config
	audit    *AuditTrail
	issuer   *receipt.Issuer
	validate *validator.Validate
	now      func() time.Time
}

func NewLedgerService(store *storage.MemoryLedger, cfg *config.Config, audit *AuditTrail) *LedgerService {
	issuer := receipt.NewIssuer()
	issuer.Seed(store.LastReceiptNumber(context.Background()))
	return &LedgerService{
		store:    store,
		cfg:      cfg,
		audit:    audit,
		issuer:   issuer,
		validate: validator.New(),
		now:      time.Now,
	}
}

type RecordPaymentRequest struct {
	PupilID       string           `validate:"required"`
	Amount        int64            `validate:"required,gt=0"`
	Date          core.Date        `validate:"required"`
	Type          core.PaymentType `validate:"required,oneof=Fees Lunch Uniform Other"`
	ReceiptNumber string
	Notes         string
}

type AmendPaymentRequest struct {
	PaymentID string           `validate:"required"`
	Amount    int64            `validate:"required,gt=0"`
	Date      core.Date        `validate:"required"`
	Type      core.PaymentType `validate:"required,oneof=Fees Lunch Uniform Other"`
	Notes     string
}

type PupilRequest struct {
	Name              string           `validate:"required,min=2,max=100"`
	ClassID           string           `validate:"required"`
	GuardianName      string           `validate:"required,min=2"`
	GuardianContact   string           `validate:"required,min=10"`
	BursaryType       core.BursaryType `validate:"required,oneof=None Partial Full"`
	BursaryPercentage int              `validate:"gte=0,lte=100"`
	BursaryReason     string
}

// RecordPayment validates, assigns a receipt number and records the
// payment together with its balance effect on the pupil.
func (s *LedgerService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (core.Payment, error) {
	if err := s.checkStruct(req); err != nil {
		return core.Payment{}, err
	}
	amount := core.Money{Cents: req.Amount}
	if err := s.checkPaymentPolicy(amount, req.Date); err != nil {
		return core.Payment{}, err
	}

	pupil, err := s.store.GetPupil(ctx, req.PupilID)
	if err != nil {
		return core.Payment{}, err
	}
	// Fees payments far beyond the outstanding balance are almost always
	// typos; reject them so the bursar re-checks the slip.
	if req.Type == core.PaymentFees && amount.Cents > s.cfg.OverpayFactor*pupil.Balance.Cents {
		return core.Payment{}, fmt.Errorf(
			"%w: amount %s significantly exceeds outstanding balance %s for pupil %s",
			core.ErrInvalidArgument, amount, pupil.Balance, pupil.ID)
	}

	number := req.ReceiptNumber
	if number == "" {
		number = s.issuer.Issue(req.Date.Year())
	} else if !receipt.Valid(number) {
		return core.Payment{}, fmt.Errorf("%w: receipt number %q does not match RCP-YYYY-NNN", core.ErrInvalidArgument, number)
	} else {
		// Manual numbers advance the issuer so later auto-issued
		// receipts cannot collide with them.
		s.issuer.Seed(number)
	}

	payment := core.Payment{
		ID:            uuid.NewString(),
		PupilID:       req.PupilID,
		Amount:        amount,
		Date:          req.Date,
		Type:          req.Type,
		ReceiptNumber: number,
		Notes:         req.Notes,
	}
	if err := s.store.AddPayment(ctx, payment); err != nil {
		return core.Payment{}, fmt.Errorf("record payment: %w", err)
	}

	s.audit.Record(ctx, AuditCreate, "PAYMENT", payment.ID, string(payment.Type)+" "+payment.Amount.String())
	slog.InfoContext(ctx, "Payment recorded",
		"payment_id", payment.ID,
		"pupil_id", payment.PupilID,
		"amount", payment.Amount.Cents,
		"receipt", payment.ReceiptNumber)
	return payment, nil
}

// AmendPayment rewrites a payment's amount, date, type and notes. The
// store reverts the old amount and applies the new one atomically, so
// the pupil's totals stay consistent with the ledger throughout.
func (s *LedgerService) AmendPayment(ctx context.Context, req AmendPaymentRequest) (core.Payment, error) {
	if err := s.checkStruct(req); err != nil {
		return core.Payment{}, err
	}
	amount := core.Money{Cents: req.Amount}
	if err := s.checkPaymentPolicy(amount, req.Date); err != nil {
		return core.Payment{}, err
	}

	old, err := s.store.GetPayment(ctx, req.PaymentID)
	if err != nil {
		return core.Payment{}, err
	}
	updated := core.Payment{
		ID:            old.ID,
		PupilID:       old.PupilID,
		Amount:        amount,
		Date:          req.Date,
		Type:          req.Type,
		ReceiptNumber: old.ReceiptNumber,
		Notes:         req.Notes,
	}
	if err := s.store.AmendPayment(ctx, updated); err != nil {
		return core.Payment{}, fmt.Errorf("amend payment: %w", err)
	}

	s.audit.Record(ctx, AuditUpdate, "PAYMENT", updated.ID,
		fmt.Sprintf("%s -> %s", old.Amount, updated.Amount))
	slog.InfoContext(ctx, "Payment amended",
		"payment_id", updated.ID,
		"pupil_id", updated.PupilID,
		"old_amount", old.Amount.Cents,
		"new_amount", updated.Amount.Cents)
	return updated, nil
}

// VoidPayment removes a payment and reverts its balance effect.
func (s *LedgerService) VoidPayment(ctx context.Context, paymentID string) error {
	old, err := s.store.VoidPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("void payment: %w", err)
	}
	s.audit.Record(ctx, AuditDelete, "PAYMENT", old.ID, old.Amount.String())
	slog.InfoContext(ctx, "Payment voided",
		"payment_id", old.ID,
		"pupil_id", old.PupilID,
		"amount", old.Amount.Cents)
	return nil
}

// EnrollPupil registers a pupil with a zero paid total; the store derives
// the opening balance from the class fee and bursary.
func (s *LedgerService) EnrollPupil(ctx context.Context, req PupilRequest) (core.Pupil, error) {
	bursary, err := s.checkBursary(req)
	if err != nil {
		return core.Pupil{}, err
	}
	pupil := core.Pupil{
		ID:              uuid.NewString(),
		Name:            req.Name,
		ClassID:         req.ClassID,
		GuardianName:    req.GuardianName,
		GuardianContact: req.GuardianContact,
		Bursary:         bursary,
	}
	created, err := s.store.AddPupil(ctx, pupil)
	if err != nil {
		return core.Pupil{}, fmt.Errorf("enroll pupil: %w", err)
	}
	s.audit.Record(ctx, AuditCreate, "PUPIL", created.ID, created.Name)
	slog.InfoContext(ctx, "Pupil enrolled",
		"pupil_id", created.ID,
		"class_id", created.ClassID,
		"balance", created.Balance.Cents)
	return created, nil
}

// UpdatePupil rewrites a pupil's details, class and bursary; the stored
// paid total is kept and the balance recomputed against the new terms.
func (s *LedgerService) UpdatePupil(ctx context.Context, pupilID string, req PupilRequest) (core.Pupil, error) {
	bursary, err := s.checkBursary(req)
	if err != nil {
		return core.Pupil{}, err
	}
	pupil := core.Pupil{
		ID:              pupilID,
		Name:            req.Name,
		ClassID:         req.ClassID,
		GuardianName:    req.GuardianName,
		GuardianContact: req.GuardianContact,
		Bursary:         bursary,
	}
	updated, err := s.store.UpdatePupil(ctx, pupil)
	if err != nil {
		return core.Pupil{}, fmt.Errorf("update pupil: %w", err)
	}
	s.audit.Record(ctx, AuditUpdate, "PUPIL", updated.ID, updated.Name)
	return updated, nil
}

// RemovePupil deletes the pupil and their payment history.
func (s *LedgerService) RemovePupil(ctx context.Context, pupilID string) error {
	if err := s.store.DeletePupil(ctx, pupilID); err != nil {
		return fmt.Errorf("remove pupil: %w", err)
	}
	s.audit.Record(ctx, AuditDelete, "PUPIL", pupilID, "")
	return nil
}

func (s *LedgerService) checkBursary(req PupilRequest) (core.Bursary, error) {
	if err := s.checkStruct(req); err != nil {
		return core.Bursary{}, err
	}
	bursary := core.Bursary{
		Type:       req.BursaryType,
		Percentage: req.BursaryPercentage,
		Reason:     req.BursaryReason,
	}
	if s.cfg.StrictBursaryBounds {
		if err := bursary.Validate(true); err != nil {
			return core.Bursary{}, err
		}
	} else {
		bursary = bursary.Normalize()
	}
	if bursary.Type != core.BursaryNone && bursary.Reason == "" {
		return core.Bursary{}, fmt.Errorf("%w: bursary reason is required when bursary is applied", core.ErrInvalidArgument)
	}
	return bursary, nil
}

func (s *LedgerService) checkPaymentPolicy(amount core.Money, date core.Date) error {
	if amount.Cents > s.cfg.MaxPaymentCents {
		return fmt.Errorf("%w: amount %s seems unusually high", core.ErrInvalidArgument, amount)
	}
	if err := date.Validate(); err != nil {
		return err
	}
	now := s.now()
	if date.After(now) {
		return fmt.Errorf("%w: payment date cannot be in the future", core.ErrInvalidArgument)
	}
	if date.Before(now.Add(-s.cfg.PaymentMaxAge)) {
		return fmt.Errorf("%w: payment date is too far in the past", core.ErrInvalidArgument)
	}
	return nil
}

func (s *LedgerService) checkStruct(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: field %s failed on %s", core.ErrInvalidArgument, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
}

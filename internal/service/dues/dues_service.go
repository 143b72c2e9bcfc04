// Package dues reconciles what each counterparty was billed against what
// they paid.
package dues

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/domain/validation"
	"github.com/mamadbah2/fishledger/internal/repository"
)

// Store is the persistence needed by the due ledger.
type Store interface {
	repository.LoadingRepository
	repository.PaymentRepository
}

// RecordPaymentRequest is a payment submitted by an operator. Confirm must
// be set to store a payment larger than the current due.
type RecordPaymentRequest struct {
	PartyName   string             `json:"party_name" validate:"required"`
	PartyKind   models.PartyKind   `json:"party_kind" validate:"required,oneof=CLIENT VENDOR"`
	Date        time.Time          `json:"date"`
	Amount      decimal.Decimal    `json:"amount"`
	Mode        models.PaymentMode `json:"mode" validate:"required,oneof=CASH BANK_TRANSFER UPI CHEQUE"`
	ReferenceNo string             `json:"reference_no"`
	Installment bool               `json:"installment"`
	ProofRef    string             `json:"proof_ref"`
	Confirm     bool               `json:"confirm"`
}

// PaymentResult carries the stored payment, if any, and the account after it.
type PaymentResult struct {
	Payment              *models.Payment   `json:"payment,omitempty"`
	Account              models.DueAccount `json:"account"`
	Warning              string            `json:"warning,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
}

// Service computes dues from the full loading and payment history.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires a new due ledger.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// BilledTotal sums the grand totals of the party's records in one category.
func (s *Service) BilledTotal(ctx context.Context, name string, category models.LoadingCategory) (decimal.Decimal, error) {
	if !category.IsValid() {
		return decimal.Zero, models.NewValidationError("category", fmt.Sprintf("%q is not a loading category", category))
	}
	records, err := s.store.ListLoadings(ctx, models.LoadingFilter{
		Categories: []models.LoadingCategory{category},
		PartyName:  strings.TrimSpace(name),
	})
	if err != nil {
		return decimal.Zero, models.WrapPersistence("list loadings", err)
	}
	total, _ := billed(records)
	return total, nil
}

// PaidTotal sums the party's payments. An empty kind counts both sides.
func (s *Service) PaidTotal(ctx context.Context, name string, kind models.PartyKind) (decimal.Decimal, error) {
	payments, err := s.store.ListPayments(ctx, models.PaymentFilter{PartyName: strings.TrimSpace(name), PartyKind: kind})
	if err != nil {
		return decimal.Zero, models.WrapPersistence("list payments", err)
	}
	total, _ := paid(payments)
	return total, nil
}

// Account returns the balance of one counterparty. Names nobody has billed
// or paid yield an all-zero account.
func (s *Service) Account(ctx context.Context, name string, kind models.PartyKind) (models.DueAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.DueAccount{}, models.NewValidationError("party_name", "is required")
	}
	if !kind.IsValid() {
		return models.DueAccount{}, models.NewValidationError("party_kind", "must be one of [CLIENT VENDOR]")
	}

	records, err := s.store.ListLoadings(ctx, models.LoadingFilter{Categories: kind.Categories(), PartyName: name})
	if err != nil {
		return models.DueAccount{}, models.WrapPersistence("list loadings", err)
	}
	payments, err := s.store.ListPayments(ctx, models.PaymentFilter{PartyName: name, PartyKind: kind})
	if err != nil {
		return models.DueAccount{}, models.WrapPersistence("list payments", err)
	}
	return account(name, kind, records, payments), nil
}

// PendingAccounts lists every party of the given kind that still owes or is
// owed money, largest due first.
func (s *Service) PendingAccounts(ctx context.Context, kind models.PartyKind) ([]models.DueAccount, error) {
	if !kind.IsValid() {
		return nil, models.NewValidationError("party_kind", "must be one of [CLIENT VENDOR]")
	}

	records, err := s.store.ListLoadings(ctx, models.LoadingFilter{Categories: kind.Categories()})
	if err != nil {
		return nil, models.WrapPersistence("list loadings", err)
	}
	payments, err := s.store.ListPayments(ctx, models.PaymentFilter{PartyKind: kind})
	if err != nil {
		return nil, models.WrapPersistence("list payments", err)
	}

	byParty := map[string][]models.LoadingRecord{}
	for _, record := range records {
		name := strings.TrimSpace(record.PartyName)
		byParty[name] = append(byParty[name], record)
	}
	paidBy := map[string][]models.Payment{}
	for _, payment := range payments {
		name := strings.TrimSpace(payment.PartyName)
		paidBy[name] = append(paidBy[name], payment)
	}

	var out []models.DueAccount
	for name, partyRecords := range byParty {
		acc := account(name, kind, partyRecords, paidBy[name])
		if acc.Due.IsPositive() {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Due.Equal(out[j].Due) {
			return out[i].Due.GreaterThan(out[j].Due)
		}
		return out[i].PartyName < out[j].PartyName
	})
	return out, nil
}

// RecordPayment stores a payment. A payment above the current due is only
// stored once confirmed; until then the result carries a warning.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	req.PartyName = strings.TrimSpace(req.PartyName)
	req.PartyKind = models.PartyKind(strings.ToUpper(strings.TrimSpace(string(req.PartyKind))))
	req.Mode = models.PaymentMode(strings.ToUpper(strings.TrimSpace(string(req.Mode))))
	req.ReferenceNo = strings.TrimSpace(req.ReferenceNo)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, models.NewValidationError("amount", "must be greater than 0")
	}

	before, err := s.Account(ctx, req.PartyName, req.PartyKind)
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{Account: before}
	if req.Amount.GreaterThan(before.Due) {
		result.Warning = fmt.Sprintf("payment of %s exceeds the current due of %s for %s",
			req.Amount.String(), before.Due.String(), req.PartyName)
		if !req.Confirm {
			result.RequiresConfirmation = true
			s.logger.Info("overpayment awaiting confirmation",
				zap.String("party", req.PartyName),
				zap.String("amount", req.Amount.String()),
				zap.String("due", before.Due.String()))
			return result, nil
		}
	}

	now := s.now().UTC()
	payment := &models.Payment{
		ID:          s.newID(),
		PartyName:   req.PartyName,
		PartyKind:   req.PartyKind,
		Date:        req.Date,
		Amount:      req.Amount,
		Mode:        req.Mode,
		ReferenceNo: req.ReferenceNo,
		Installment: req.Installment,
		ProofRef:    req.ProofRef,
		CreatedAt:   now,
	}
	if payment.Date.IsZero() {
		payment.Date = now
	}
	if err := s.store.InsertPayment(ctx, payment); err != nil {
		return nil, models.WrapPersistence("insert payment", err)
	}

	after, err := s.Account(ctx, req.PartyName, req.PartyKind)
	if err != nil {
		return nil, err
	}
	result.Payment = payment
	result.Account = after

	s.logger.Info("payment recorded",
		zap.String("id", payment.ID),
		zap.String("party", payment.PartyName),
		zap.String("kind", string(payment.PartyKind)),
		zap.String("amount", payment.Amount.String()),
		zap.Bool("installment", payment.Installment),
		zap.String("due", after.Due.String()))
	return result, nil
}

// Payments lists payments matching filter.
func (s *Service) Payments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	filter.PartyName = strings.TrimSpace(filter.PartyName)
	payments, err := s.store.ListPayments(ctx, filter)
	if err != nil {
		return nil, models.WrapPersistence("list payments", err)
	}
	return payments, nil
}

func billed(records []models.LoadingRecord) (decimal.Decimal, int) {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(record.GrandTotal)
	}
	return total, len(records)
}

// paid ignores the installment flag.
func paid(payments []models.Payment) (decimal.Decimal, int) {
	total := decimal.Zero
	for _, payment := range payments {
		total = total.Add(payment.Amount)
	}
	return total, len(payments)
}

func account(name string, kind models.PartyKind, records []models.LoadingRecord, payments []models.Payment) models.DueAccount {
	billedTotal, recordCount := billed(records)
	paidTotal, paymentCount := paid(payments)

	balance := billedTotal.Sub(paidTotal)
	return models.DueAccount{
		PartyName:    name,
		PartyKind:    kind,
		TotalBilled:  billedTotal,
		TotalPaid:    paidTotal,
		Due:          decimal.Max(decimal.Zero, balance),
		Overpaid:     decimal.Max(decimal.Zero, balance.Neg()),
		RecordCount:  recordCount,
		PaymentCount: paymentCount,
	}
}

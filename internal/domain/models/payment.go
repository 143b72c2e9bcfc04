package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PartyKind separates the client side from the vendor side of the ledger.
type PartyKind string

const (
	PartyClient PartyKind = "CLIENT"
	PartyVendor PartyKind = "VENDOR"
)

// IsValid reports whether k is a known party kind.
func (k PartyKind) IsValid() bool {
	return k == PartyClient || k == PartyVendor
}

// Categories returns the loading categories that bill this kind of party.
func (k PartyKind) Categories() []LoadingCategory {
	if k == PartyClient {
		return []LoadingCategory{CategoryClientDispatch}
	}
	return []LoadingCategory{CategoryFarmerIntake, CategoryAgentIntake}
}

// PaymentMode is how a payment was settled.
type PaymentMode string

const (
	ModeCash         PaymentMode = "CASH"
	ModeBankTransfer PaymentMode = "BANK_TRANSFER"
	ModeUPI          PaymentMode = "UPI"
	ModeCheque       PaymentMode = "CHEQUE"
)

// IsValid reports whether m is a known payment mode.
func (m PaymentMode) IsValid() bool {
	switch m {
	case ModeCash, ModeBankTransfer, ModeUPI, ModeCheque:
		return true
	}
	return false
}

// Payment is a settlement against a counterparty. Payments are append-only;
// corrections are recorded as new payments.
type Payment struct {
	ID          string          `bson:"_id" json:"id"`
	PartyName   string          `bson:"party_name" json:"party_name"`
	PartyKind   PartyKind       `bson:"party_kind" json:"party_kind"`
	Date        time.Time       `bson:"date" json:"date"`
	Amount      decimal.Decimal `bson:"amount" json:"amount"`
	Mode        PaymentMode     `bson:"mode" json:"mode"`
	ReferenceNo string          `bson:"reference_no,omitempty" json:"reference_no,omitempty"`
	Installment bool            `bson:"installment" json:"installment"`
	ProofRef    string          `bson:"proof_ref,omitempty" json:"proof_ref,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}

// MatchesParty compares party names after trimming, case-sensitively.
func (p *Payment) MatchesParty(name string) bool {
	return strings.TrimSpace(p.PartyName) == strings.TrimSpace(name)
}

// PaymentFilter narrows payment scans. Zero values match everything.
type PaymentFilter struct {
	PartyName string
	PartyKind PartyKind
}

// Matches reports whether the payment satisfies the filter.
func (f PaymentFilter) Matches(p *Payment) bool {
	if f.PartyKind != "" && p.PartyKind != f.PartyKind {
		return false
	}
	if f.PartyName != "" && !p.MatchesParty(f.PartyName) {
		return false
	}
	return true
}

package models

import "github.com/shopspring/decimal"

// StockPosition is the derived availability of one variety.
type StockPosition struct {
	VarietyCode   string  `bson:"variety_code" json:"variety_code"`
	IntakeKgs     float64 `bson:"intake_kgs" json:"intake_kgs"`
	DispatchedKgs float64 `bson:"dispatched_kgs" json:"dispatched_kgs"`
	NetKgs        float64 `bson:"net_kgs" json:"net_kgs"`
	NetTrays      int     `bson:"net_trays" json:"net_trays"`
}

// ClampResult is the outcome of fitting a proposed line into available stock.
type ClampResult struct {
	Trays      int     `json:"trays"`
	LooseKgs   float64 `json:"loose_kgs"`
	WasClamped bool    `json:"was_clamped"`
	MaxKgs     float64 `json:"max_kgs"`
}

// ClampNotice tells the caller a line was reduced to fit stock.
type ClampNotice struct {
	LineID      string  `json:"line_id"`
	VarietyCode string  `json:"variety_code"`
	MaxKgs      float64 `json:"max_kgs"`
	Trays       int     `json:"trays"`
	LooseKgs    float64 `json:"loose_kgs"`
}

// DueAccount is the derived balance of one counterparty.
type DueAccount struct {
	PartyName    string          `bson:"party_name" json:"party_name"`
	PartyKind    PartyKind       `bson:"party_kind" json:"party_kind"`
	TotalBilled  decimal.Decimal `bson:"total_billed" json:"total_billed"`
	TotalPaid    decimal.Decimal `bson:"total_paid" json:"total_paid"`
	Due          decimal.Decimal `bson:"due" json:"due"`
	Overpaid     decimal.Decimal `bson:"overpaid" json:"overpaid"`
	RecordCount  int             `bson:"record_count" json:"record_count"`
	PaymentCount int             `bson:"payment_count" json:"payment_count"`
}

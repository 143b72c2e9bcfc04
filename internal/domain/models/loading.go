package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LoadingCategory distinguishes intake from dispatch loadings.
type LoadingCategory string

const (
	CategoryFarmerIntake   LoadingCategory = "FARMER_INTAKE"
	CategoryAgentIntake    LoadingCategory = "AGENT_INTAKE"
	CategoryClientDispatch LoadingCategory = "CLIENT_DISPATCH"
)

// IsValid reports whether c is a known category.
func (c LoadingCategory) IsValid() bool {
	switch c {
	case CategoryFarmerIntake, CategoryAgentIntake, CategoryClientDispatch:
		return true
	}
	return false
}

// IsIntake reports whether the category adds stock.
func (c LoadingCategory) IsIntake() bool {
	return c == CategoryFarmerIntake || c == CategoryAgentIntake
}

// IsDispatch reports whether the category removes stock.
func (c LoadingCategory) IsDispatch() bool {
	return c == CategoryClientDispatch
}

// PartyKind returns the kind of counterparty billed by records of this category.
func (c LoadingCategory) PartyKind() PartyKind {
	if c.IsDispatch() {
		return PartyClient
	}
	return PartyVendor
}

// LineItem is a single variety line on a loading record.
type LineItem struct {
	ID          string          `bson:"id" json:"id"`
	VarietyCode string          `bson:"variety_code" json:"variety_code"`
	Trays       int             `bson:"trays" json:"trays"`
	LooseKgs    float64         `bson:"loose_kgs" json:"loose_kgs"`
	TrayKgs     float64         `bson:"tray_kgs" json:"tray_kgs"`
	TotalKgs    float64         `bson:"total_kgs" json:"total_kgs"`
	PricePerKg  decimal.Decimal `bson:"price_per_kg" json:"price_per_kg"`
	TotalPrice  decimal.Decimal `bson:"total_price" json:"total_price"`
}

// PerTrayWeight returns the per-tray weight implied by the stored values of
// the line, or zero when the line carries no trays.
func (l LineItem) PerTrayWeight() float64 {
	if l.Trays <= 0 {
		return 0
	}
	return l.TrayKgs / float64(l.Trays)
}

// LoadingRecord is one intake or dispatch transaction. Lines are embedded so
// that the record and all of its lines are always stored as one unit.
type LoadingRecord struct {
	ID         string          `bson:"_id" json:"id"`
	BillNo     string          `bson:"bill_no" json:"bill_no"`
	Category   LoadingCategory `bson:"category" json:"category"`
	PartyName  string          `bson:"party_name" json:"party_name"`
	Date       time.Time       `bson:"date" json:"date"`
	VehicleRef string          `bson:"vehicle_ref,omitempty" json:"vehicle_ref,omitempty"`
	Lines      []LineItem      `bson:"lines" json:"lines"`

	TotalTrays     int             `bson:"total_trays" json:"total_trays"`
	TotalLooseKgs  float64         `bson:"total_loose_kgs" json:"total_loose_kgs"`
	TotalWeightKgs float64         `bson:"total_weight_kgs" json:"total_weight_kgs"`
	GrandTotalKgs  float64         `bson:"grand_total_kgs" json:"grand_total_kgs"`
	TotalPrice     decimal.Decimal `bson:"total_price" json:"total_price"`
	GrandTotal     decimal.Decimal `bson:"grand_total" json:"grand_total"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Line returns the line with the given id.
func (r *LoadingRecord) Line(id string) (LineItem, int, bool) {
	for i, line := range r.Lines {
		if line.ID == id {
			return line, i, true
		}
	}
	return LineItem{}, -1, false
}

// MatchesParty compares party names after trimming, case-sensitively.
func (r *LoadingRecord) MatchesParty(name string) bool {
	return strings.TrimSpace(r.PartyName) == strings.TrimSpace(name)
}

// LoadingFilter narrows repository scans. Zero values match everything.
type LoadingFilter struct {
	Categories []LoadingCategory
	PartyName  string
	Variety    string
}

// Matches reports whether the record satisfies the filter.
func (f LoadingFilter) Matches(r *LoadingRecord) bool {
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if r.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PartyName != "" && !r.MatchesParty(f.PartyName) {
		return false
	}
	if f.Variety != "" {
		for _, line := range r.Lines {
			if line.VarietyCode == f.Variety {
				return true
			}
		}
		return false
	}
	return true
}

// LineState is the lifecycle stage of a line during editing.
type LineState string

const (
	LineCreated LineState = "CREATED"
	LineEditing LineState = "EDITING"
	LineSaved   LineState = "SAVED"
	LineDeleted LineState = "DELETED"
)

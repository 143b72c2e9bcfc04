package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

// LineEdit is the shadow copy of a saved line while it is being edited. The
// per-tray weight is read back from the stored line once and pinned for the
// whole session, so quantity edits never change the implied tray weight the
// counterparty was billed at.
type LineEdit struct {
	category      models.LoadingCategory
	policy        Policy
	perTrayWeight float64
	original      models.LineItem
	shadow        models.LineItem
}

// BeginEdit opens an edit session on a saved line.
func BeginEdit(policy Policy, category models.LoadingCategory, line models.LineItem) *LineEdit {
	return &LineEdit{
		category:      category,
		policy:        policy,
		perTrayWeight: line.PerTrayWeight(),
		original:      line,
		shadow:        line,
	}
}

// PerTrayWeight is the pinned weight used by the session.
func (e *LineEdit) PerTrayWeight() float64 { return e.perTrayWeight }

// Category of the record the line belongs to.
func (e *LineEdit) Category() models.LoadingCategory { return e.category }

// Original is the line as it was when the session began.
func (e *LineEdit) Original() models.LineItem { return e.original }

// Shadow is the edited line with recomputed totals.
func (e *LineEdit) Shadow() models.LineItem { return e.shadow }

// SetTrays changes the tray count and recalculates.
func (e *LineEdit) SetTrays(trays int) models.LineItem {
	e.shadow.Trays = trays
	return e.recalculate()
}

// SetLoose changes the loose kilograms and recalculates.
func (e *LineEdit) SetLoose(loose float64) models.LineItem {
	e.shadow.LooseKgs = loose
	return e.recalculate()
}

// SetPrice changes the price per kilogram and recalculates.
func (e *LineEdit) SetPrice(price decimal.Decimal) models.LineItem {
	e.shadow.PricePerKg = price
	return e.recalculate()
}

// Apply sets whichever fields are non-nil and recalculates once.
func (e *LineEdit) Apply(trays *int, loose *float64, price *decimal.Decimal) models.LineItem {
	if trays != nil {
		e.shadow.Trays = *trays
	}
	if loose != nil {
		e.shadow.LooseKgs = *loose
	}
	if price != nil {
		e.shadow.PricePerKg = *price
	}
	return e.recalculate()
}

func (e *LineEdit) recalculate() models.LineItem {
	if e.shadow.Trays == e.original.Trays {
		// Unchanged trays keep the stored tray weight verbatim.
		e.shadow.TrayKgs = e.original.TrayKgs
		e.shadow.TotalKgs = decimal.NewFromFloat(e.original.TrayKgs).
			Add(decimal.NewFromFloat(LineWeight(0, e.shadow.LooseKgs, 0))).
			InexactFloat64()
		e.shadow.TotalPrice = e.policy.LineTotalPrice(e.category, e.shadow.TotalKgs, e.shadow.PricePerKg)
		return e.shadow
	}
	e.shadow = e.policy.PriceLine(e.category, e.shadow, e.perTrayWeight)
	return e.shadow
}

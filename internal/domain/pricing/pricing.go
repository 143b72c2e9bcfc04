// Package pricing converts trays and loose kilograms into billable weight and
// money. Every function is pure; the per-tray weight and deduction figures
// arrive through a Policy instead of package-level constants.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Policy holds the business constants used to price a loading.
type Policy struct {
	PerTrayWeightKg          float64
	DispatchDeductionPercent float64
	IntakeNetFactor          float64
}

// DefaultPolicy returns the constants of the reference business.
func DefaultPolicy() Policy {
	return Policy{
		PerTrayWeightKg:          35,
		DispatchDeductionPercent: 5,
		IntakeNetFactor:          0.95,
	}
}

// Validate rejects policies that would produce nonsensical totals.
func (p Policy) Validate() error {
	switch {
	case p.PerTrayWeightKg <= 0:
		return errors.New("per-tray weight must be positive")
	case p.DispatchDeductionPercent < 0 || p.DispatchDeductionPercent >= 100:
		return errors.New("dispatch deduction percent must be within [0, 100)")
	case p.IntakeNetFactor <= 0 || p.IntakeNetFactor > 1:
		return errors.New("intake net factor must be within (0, 1]")
	}
	return nil
}

// LineWeight returns trays*perTrayWeight + loose. Negative inputs count as zero.
func LineWeight(trays int, loose, perTrayWeight float64) float64 {
	if trays < 0 {
		trays = 0
	}
	if loose < 0 {
		loose = 0
	}
	if perTrayWeight < 0 {
		perTrayWeight = 0
	}
	return decimal.NewFromInt(int64(trays)).
		Mul(decimal.NewFromFloat(perTrayWeight)).
		Add(decimal.NewFromFloat(loose)).
		InexactFloat64()
}

// DispatchGrandTotal applies the in-transit shrinkage to a dispatch weight and
// rounds to whole kilograms.
func DispatchGrandTotal(totalKgs, deductionPercent float64) float64 {
	return decimal.NewFromFloat(totalKgs).
		Mul(deductionMultiplier(deductionPercent)).
		Round(0).
		InexactFloat64()
}

// IntakeLineTotalPrice applies the processing yield factor to the price of an
// intake line and rounds to whole currency units.
func IntakeLineTotalPrice(totalKgs float64, pricePerKg decimal.Decimal, netFactor float64) decimal.Decimal {
	return decimal.NewFromFloat(totalKgs).
		Mul(pricePerKg).
		Mul(decimal.NewFromFloat(netFactor)).
		Round(0)
}

// DispatchLineTotalPrice prices a dispatch line on its payable weight, i.e. the
// weight after shrinkage. The payable weight is not rounded before pricing.
func DispatchLineTotalPrice(totalKgs float64, pricePerKg decimal.Decimal, deductionPercent float64) decimal.Decimal {
	return decimal.NewFromFloat(totalKgs).
		Mul(deductionMultiplier(deductionPercent)).
		Mul(pricePerKg).
		Round(0)
}

func deductionMultiplier(percent float64) decimal.Decimal {
	return one.Sub(decimal.NewFromFloat(percent).Div(hundred))
}

// LineTotalPrice prices totalKgs with the formula of the given category.
func (p Policy) LineTotalPrice(category models.LoadingCategory, totalKgs float64, pricePerKg decimal.Decimal) decimal.Decimal {
	if category.IsDispatch() {
		return DispatchLineTotalPrice(totalKgs, pricePerKg, p.DispatchDeductionPercent)
	}
	return IntakeLineTotalPrice(totalKgs, pricePerKg, p.IntakeNetFactor)
}

// PriceLine fills the derived fields of line using perTrayWeight.
func (p Policy) PriceLine(category models.LoadingCategory, line models.LineItem, perTrayWeight float64) models.LineItem {
	line.TrayKgs = LineWeight(line.Trays, 0, perTrayWeight)
	line.TotalKgs = LineWeight(line.Trays, line.LooseKgs, perTrayWeight)
	line.TotalPrice = p.LineTotalPrice(category, line.TotalKgs, line.PricePerKg)
	return line
}

// Totals are the derived figures of a loading record.
type Totals struct {
	Trays         int             `json:"total_trays"`
	LooseKgs      float64         `json:"total_loose_kgs"`
	WeightKgs     float64         `json:"total_weight_kgs"`
	GrandTotalKgs float64         `json:"grand_total_kgs"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// RecordTotals sums the lines of a record of the given category.
func (p Policy) RecordTotals(category models.LoadingCategory, lines []models.LineItem) Totals {
	var (
		t     Totals
		loose = decimal.Zero
		kgs   = decimal.Zero
	)
	t.TotalPrice = decimal.Zero

	for _, line := range lines {
		t.Trays += line.Trays
		loose = loose.Add(decimal.NewFromFloat(line.LooseKgs))
		kgs = kgs.Add(decimal.NewFromFloat(line.TotalKgs))
		t.TotalPrice = t.TotalPrice.Add(line.TotalPrice)
	}

	t.LooseKgs = loose.InexactFloat64()
	t.WeightKgs = kgs.InexactFloat64()
	t.GrandTotalKgs = t.WeightKgs
	if category.IsDispatch() {
		t.GrandTotalKgs = DispatchGrandTotal(t.WeightKgs, p.DispatchDeductionPercent)
	}
	t.GrandTotal = t.TotalPrice
	return t
}

// ApplyTotals recomputes and stores the totals of record.
func (p Policy) ApplyTotals(record *models.LoadingRecord) {
	t := p.RecordTotals(record.Category, record.Lines)
	record.TotalTrays = t.Trays
	record.TotalLooseKgs = t.LooseKgs
	record.TotalWeightKgs = t.WeightKgs
	record.GrandTotalKgs = t.GrandTotalKgs
	record.TotalPrice = t.TotalPrice
	record.GrandTotal = t.GrandTotal
}

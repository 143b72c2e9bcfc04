package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

const weightTolerance = 1e-9

// Clamp fits a proposed line into maxKgs. A proposal that fits is returned as
// is. Otherwise full trays are kept first, up to the proposed count, and the
// remaining allowance becomes loose weight. A negative allowance clamps to zero.
func Clamp(trays int, loose, maxKgs, perTrayWeight float64) models.ClampResult {
	if trays < 0 {
		trays = 0
	}
	if loose < 0 {
		loose = 0
	}
	if maxKgs < 0 {
		maxKgs = 0
	}

	if LineWeight(trays, loose, perTrayWeight) <= maxKgs+weightTolerance {
		return models.ClampResult{Trays: trays, LooseKgs: loose, MaxKgs: maxKgs}
	}

	// Trays weigh nothing under a zero pinned weight, so only loose can give way.
	if perTrayWeight <= 0 {
		return models.ClampResult{Trays: trays, LooseKgs: maxKgs, WasClamped: true, MaxKgs: maxKgs}
	}

	allowance := decimal.NewFromFloat(maxKgs)
	weight := decimal.NewFromFloat(perTrayWeight)

	fit := int(allowance.Div(weight).Floor().IntPart())
	if fit < trays {
		trays = fit
	}

	remainder := allowance.Sub(decimal.NewFromInt(int64(trays)).Mul(weight))
	if remainder.IsNegative() {
		remainder = decimal.Zero
	}

	return models.ClampResult{
		Trays:      trays,
		LooseKgs:   remainder.InexactFloat64(),
		WasClamped: true,
		MaxKgs:     maxKgs,
	}
}

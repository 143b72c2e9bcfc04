package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		trays     int
		loose     float64
		maxKgs    float64
		w         float64
		wantTrays int
		wantLoose float64
		clamped   bool
	}{
		{"fits unchanged", 10, 20, 500, 35, 10, 20, false},
		{"exact fit", 14, 10, 500, 35, 14, 10, false},
		{"trays reduced, remainder loose", 16, 0, 500, 35, 14, 10, true},
		{"loose reduced only", 10, 200, 500, 35, 10, 150, true},
		{"both reduced", 20, 30, 100, 35, 2, 30, true},
		{"no stock", 3, 5, 0, 35, 0, 0, true},
		{"negative stock", 3, 5, -40, 35, 0, 0, true},
		{"zero pinned weight", 4, 50, 20, 0, 4, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.trays, tt.loose, tt.maxKgs, tt.w)
			assert.Equal(t, tt.wantTrays, got.Trays)
			assert.InDelta(t, tt.wantLoose, got.LooseKgs, 1e-9)
			assert.Equal(t, tt.clamped, got.WasClamped)
		})
	}
}

func TestClamp_NeverExceedsAllowance(t *testing.T) {
	for maxKgs := 0.0; maxKgs <= 400; maxKgs += 12.5 {
		for trays := 0; trays <= 15; trays++ {
			for _, loose := range []float64{0, 3, 17.5, 60} {
				got := Clamp(trays, loose, maxKgs, 35)
				weight := LineWeight(got.Trays, got.LooseKgs, 35)
				proposed := LineWeight(trays, loose, 35)

				assert.LessOrEqual(t, weight, maxKgs+1e-9)
				assert.LessOrEqual(t, got.Trays, trays)
				if got.WasClamped {
					// Trays give way before loose and the allowance is used in full.
					assert.InDelta(t, maxKgs, weight, 1e-9)
				} else {
					assert.Equal(t, proposed, weight)
				}
			}
		}
	}
}

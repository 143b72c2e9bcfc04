package stock

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/domain/pricing"
	"github.com/mamadbah2/fishledger/internal/repository"
)

// Service answers how much of a variety can still be dispatched. Positions
// are recomputed from the full loading history on every call.
type Service struct {
	repo   repository.LoadingRepository
	policy pricing.Policy
	logger *zap.Logger
}

// NewService wires a new stock ledger.
func NewService(repo repository.LoadingRepository, policy pricing.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, policy: policy, logger: logger}
}

// Policy returns the pricing policy the ledger uses.
func (s *Service) Policy() pricing.Policy { return s.policy }

type tally struct {
	intake     decimal.Decimal
	dispatched decimal.Decimal
}

func (t *tally) add(category models.LoadingCategory, kgs float64) {
	if category.IsDispatch() {
		t.dispatched = t.dispatched.Add(decimal.NewFromFloat(kgs))
		return
	}
	t.intake = t.intake.Add(decimal.NewFromFloat(kgs))
}

func (s *Service) position(code string, t tally) models.StockPosition {
	net := t.intake.Sub(t.dispatched)
	trays := 0
	if net.IsPositive() {
		trays = int(net.Div(decimal.NewFromFloat(s.policy.PerTrayWeightKg)).Floor().IntPart())
	}
	return models.StockPosition{
		VarietyCode:   code,
		IntakeKgs:     t.intake.InexactFloat64(),
		DispatchedKgs: t.dispatched.InexactFloat64(),
		NetKgs:        net.InexactFloat64(),
		NetTrays:      trays,
	}
}

// NetStock sums intake minus dispatch for one variety across all records.
func (s *Service) NetStock(ctx context.Context, variety string) (models.StockPosition, error) {
	code := models.NormalizeVarietyCode(variety)
	if code == "" {
		return models.StockPosition{}, models.NewValidationError("variety_code", "is required")
	}

	records, err := s.repo.ListLoadings(ctx, models.LoadingFilter{Variety: code})
	if err != nil {
		return models.StockPosition{}, models.WrapPersistence("list loadings", err)
	}

	t := tally{intake: decimal.Zero, dispatched: decimal.Zero}
	for _, record := range records {
		for _, line := range record.Lines {
			if line.VarietyCode == code {
				t.add(record.Category, line.TotalKgs)
			}
		}
	}

	pos := s.position(code, t)
	s.logger.Debug("net stock computed",
		zap.String("variety", code),
		zap.Int("records", len(records)),
		zap.Float64("net_kgs", pos.NetKgs))
	return pos, nil
}

// Positions returns the stock of every variety present in the history, by code.
func (s *Service) Positions(ctx context.Context) ([]models.StockPosition, error) {
	records, err := s.repo.ListLoadings(ctx, models.LoadingFilter{})
	if err != nil {
		return nil, models.WrapPersistence("list loadings", err)
	}

	tallies := map[string]*tally{}
	for _, record := range records {
		for _, line := range record.Lines {
			t, ok := tallies[line.VarietyCode]
			if !ok {
				t = &tally{intake: decimal.Zero, dispatched: decimal.Zero}
				tallies[line.VarietyCode] = t
			}
			t.add(record.Category, line.TotalKgs)
		}
	}

	out := make([]models.StockPosition, 0, len(tallies))
	for code, t := range tallies {
		out = append(out, s.position(code, *t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VarietyCode < out[j].VarietyCode })
	return out, nil
}

// ClampProposedLine fits a new dispatch line into the stock left after the
// other lines of the same form that use the same variety. Sibling lines are
// weighed with the current per-tray constant since none of them is saved yet.
func (s *Service) ClampProposedLine(ctx context.Context, variety string, trays int, loose float64, siblings []models.LineItem) (models.ClampResult, error) {
	if err := checkQuantities(trays, loose); err != nil {
		return models.ClampResult{}, err
	}

	pos, err := s.NetStock(ctx, variety)
	if err != nil {
		return models.ClampResult{}, err
	}

	allowance := decimal.NewFromFloat(pos.NetKgs)
	for _, sibling := range siblings {
		if models.NormalizeVarietyCode(sibling.VarietyCode) != pos.VarietyCode {
			continue
		}
		kgs := pricing.LineWeight(sibling.Trays, sibling.LooseKgs, s.policy.PerTrayWeightKg)
		allowance = allowance.Sub(decimal.NewFromFloat(kgs))
	}

	result := pricing.Clamp(trays, loose, allowance.InexactFloat64(), s.policy.PerTrayWeightKg)
	if result.WasClamped {
		s.logger.Info("dispatch line clamped to stock",
			zap.String("variety", pos.VarietyCode),
			zap.Int("proposed_trays", trays),
			zap.Float64("proposed_loose", loose),
			zap.Float64("max_kgs", result.MaxKgs))
	}
	return result, nil
}

// ClampEditedLine fits an edited, already saved dispatch line. The saved
// weight of the line is released back into the allowance and the session's
// pinned per-tray weight is used instead of the current constant.
func (s *Service) ClampEditedLine(ctx context.Context, variety string, trays int, loose, savedKgs, perTrayWeight float64) (models.ClampResult, error) {
	if err := checkQuantities(trays, loose); err != nil {
		return models.ClampResult{}, err
	}

	pos, err := s.NetStock(ctx, variety)
	if err != nil {
		return models.ClampResult{}, err
	}

	allowance := decimal.NewFromFloat(pos.NetKgs).Add(decimal.NewFromFloat(savedKgs))
	return pricing.Clamp(trays, loose, allowance.InexactFloat64(), perTrayWeight), nil
}

func checkQuantities(trays int, loose float64) error {
	if trays < 0 {
		return models.NewValidationError("trays", fmt.Sprintf("must be at least 0, got %d", trays))
	}
	if loose < 0 {
		return models.NewValidationError("loose_kgs", fmt.Sprintf("must be at least 0, got %g", loose))
	}
	return nil
}

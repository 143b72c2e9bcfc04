// Package loadings records intake and dispatch loadings and runs the line
// edit lifecycle on saved records.
package loadings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/domain/pricing"
	"github.com/mamadbah2/fishledger/internal/domain/validation"
	"github.com/mamadbah2/fishledger/internal/repository"
)

// StockChecker is the part of the stock ledger used to clamp dispatch lines.
type StockChecker interface {
	ClampProposedLine(ctx context.Context, variety string, trays int, loose float64, siblings []models.LineItem) (models.ClampResult, error)
	ClampEditedLine(ctx context.Context, variety string, trays int, loose, savedKgs, perTrayWeight float64) (models.ClampResult, error)
}

// Store is the persistence needed by the loadings service.
type Store interface {
	repository.LoadingRepository
	repository.VarietyRepository
}

// LineRequest is one line of a loading form.
type LineRequest struct {
	VarietyCode string          `json:"variety_code" validate:"required"`
	Trays       int             `json:"trays" validate:"gte=0"`
	LooseKgs    float64         `json:"loose_kgs" validate:"gte=0"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
}

// CreateLoadingRequest is a complete loading form.
type CreateLoadingRequest struct {
	BillNo     string                 `json:"bill_no" validate:"required"`
	Category   models.LoadingCategory `json:"category" validate:"required,oneof=FARMER_INTAKE AGENT_INTAKE CLIENT_DISPATCH"`
	PartyName  string                 `json:"party_name" validate:"required"`
	Date       time.Time              `json:"date"`
	VehicleRef string                 `json:"vehicle_ref"`
	Lines      []LineRequest          `json:"lines" validate:"required,min=1,dive"`
}

// CreateResult is a stored record with the lines that had to be reduced.
type CreateResult struct {
	Record  *models.LoadingRecord `json:"record"`
	Notices []models.ClampNotice  `json:"notices,omitempty"`
}

// Service owns loading records.
type Service struct {
	store    Store
	stock    StockChecker
	policy   pricing.Policy
	sessions *SessionManager
	locks    *varietyLocks
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires a new loadings service.
func NewService(store Store, stock StockChecker, policy pricing.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		stock:    stock,
		policy:   policy,
		sessions: NewSessionManager(),
		locks:    newVarietyLocks(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (r *CreateLoadingRequest) normalize() {
	r.BillNo = strings.TrimSpace(r.BillNo)
	r.PartyName = strings.TrimSpace(r.PartyName)
	r.VehicleRef = strings.TrimSpace(r.VehicleRef)
	r.Category = models.LoadingCategory(strings.ToUpper(strings.TrimSpace(string(r.Category))))
	for i := range r.Lines {
		r.Lines[i].VarietyCode = models.NormalizeVarietyCode(r.Lines[i].VarietyCode)
	}
}

func checkLine(field string, trays int, loose float64, price decimal.Decimal) error {
	if price.IsNegative() {
		return models.NewValidationError(field+".price_per_kg", "must be at least 0")
	}
	if trays == 0 && loose == 0 {
		return models.NewValidationError(field, "must carry trays or loose weight")
	}
	return nil
}

// CreateLoading validates and stores a new record. Dispatch lines are fitted
// into available stock in form order, each after the lines accepted before it.
// Lines with no stock left are dropped and reported in the notices.
func (s *Service) CreateLoading(ctx context.Context, req CreateLoadingRequest) (*CreateResult, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(req.Lines))
	for i, line := range req.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if err := checkLine(field, line.Trays, line.LooseKgs, line.PricePerKg); err != nil {
			return nil, err
		}
		if err := s.requireVariety(ctx, field, line.VarietyCode); err != nil {
			return nil, err
		}
		codes = append(codes, line.VarietyCode)
	}

	unlock := s.locks.lock(codes...)
	defer unlock()

	now := s.now().UTC()
	record := &models.LoadingRecord{
		ID:         s.newID(),
		BillNo:     req.BillNo,
		Category:   req.Category,
		PartyName:  req.PartyName,
		Date:       req.Date,
		VehicleRef: req.VehicleRef,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if record.Date.IsZero() {
		record.Date = now
	}

	var notices []models.ClampNotice
	for _, in := range req.Lines {
		line := models.LineItem{
			ID:          s.newID(),
			VarietyCode: in.VarietyCode,
			Trays:       in.Trays,
			LooseKgs:    in.LooseKgs,
			PricePerKg:  in.PricePerKg,
		}

		if record.Category.IsDispatch() {
			clamp, err := s.stock.ClampProposedLine(ctx, line.VarietyCode, line.Trays, line.LooseKgs, record.Lines)
			if err != nil {
				return nil, err
			}
			if clamp.WasClamped {
				line.Trays, line.LooseKgs = clamp.Trays, clamp.LooseKgs
				notices = append(notices, notice(line, clamp))
			}
			if line.Trays == 0 && line.LooseKgs == 0 {
				continue
			}
		}

		record.Lines = append(record.Lines, s.policy.PriceLine(record.Category, line, s.policy.PerTrayWeightKg))
	}

	if len(record.Lines) == 0 {
		return nil, models.NewValidationError("lines", "have no stock available to dispatch")
	}

	s.policy.ApplyTotals(record)
	if err := s.store.InsertLoading(ctx, record); err != nil {
		return nil, models.WrapPersistence("insert loading", err)
	}

	s.logger.Info("loading recorded",
		zap.String("id", record.ID),
		zap.String("bill_no", record.BillNo),
		zap.String("category", string(record.Category)),
		zap.Int("lines", len(record.Lines)),
		zap.Int("clamped", len(notices)),
		zap.String("grand_total", record.GrandTotal.String()))

	return &CreateResult{Record: record, Notices: notices}, nil
}

// PreviewClamp reports how a dispatch line would be fitted given the other
// lines already on the form. Nothing is stored.
func (s *Service) PreviewClamp(ctx context.Context, line LineRequest, siblings []LineRequest) (models.ClampResult, error) {
	code := models.NormalizeVarietyCode(line.VarietyCode)
	others := make([]models.LineItem, 0, len(siblings))
	for _, sibling := range siblings {
		others = append(others, models.LineItem{
			VarietyCode: models.NormalizeVarietyCode(sibling.VarietyCode),
			Trays:       sibling.Trays,
			LooseKgs:    sibling.LooseKgs,
		})
	}
	return s.stock.ClampProposedLine(ctx, code, line.Trays, line.LooseKgs, others)
}

// GetLoading returns a record by id.
func (s *Service) GetLoading(ctx context.Context, id string) (*models.LoadingRecord, error) {
	record, err := s.store.GetLoading(ctx, id)
	if err != nil {
		return nil, models.WrapPersistence("get loading", err)
	}
	return record, nil
}

// ListLoadings returns the records matching filter.
func (s *Service) ListLoadings(ctx context.Context, filter models.LoadingFilter) ([]models.LoadingRecord, error) {
	filter.Variety = models.NormalizeVarietyCode(filter.Variety)
	filter.PartyName = strings.TrimSpace(filter.PartyName)
	records, err := s.store.ListLoadings(ctx, filter)
	if err != nil {
		return nil, models.WrapPersistence("list loadings", err)
	}
	return records, nil
}

func (s *Service) requireVariety(ctx context.Context, field, code string) error {
	if _, err := s.store.GetVariety(ctx, code); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewValidationError(field+".variety_code", fmt.Sprintf("%q is not a known variety", code))
		}
		return models.WrapPersistence("get variety", err)
	}
	return nil
}

func notice(line models.LineItem, clamp models.ClampResult) models.ClampNotice {
	return models.ClampNotice{
		LineID:      line.ID,
		VarietyCode: line.VarietyCode,
		MaxKgs:      clamp.MaxKgs,
		Trays:       clamp.Trays,
		LooseKgs:    clamp.LooseKgs,
	}
}

package loadings

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/domain/validation"
)

// CreateVarietyRequest registers a fish variety.
type CreateVarietyRequest struct {
	Code string `json:"code" validate:"required,max=16"`
	Name string `json:"name" validate:"required"`
}

// CreateVariety adds a variety to the catalogue. Codes are stored upper-cased.
func (s *Service) CreateVariety(ctx context.Context, req CreateVarietyRequest) (models.Variety, error) {
	req.Code = models.NormalizeVarietyCode(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return models.Variety{}, err
	}

	variety := models.Variety{Code: req.Code, Name: req.Name}
	if err := s.store.InsertVariety(ctx, variety); err != nil {
		return models.Variety{}, models.WrapPersistence("insert variety", err)
	}

	s.logger.Info("variety created", zap.String("code", variety.Code))
	return variety, nil
}

// GetVariety looks a variety up by code.
func (s *Service) GetVariety(ctx context.Context, code string) (models.Variety, error) {
	variety, err := s.store.GetVariety(ctx, models.NormalizeVarietyCode(code))
	if err != nil {
		return models.Variety{}, models.WrapPersistence("get variety", err)
	}
	return variety, nil
}

// ListVarieties returns the catalogue ordered by code.
func (s *Service) ListVarieties(ctx context.Context) ([]models.Variety, error) {
	varieties, err := s.store.ListVarieties(ctx)
	if err != nil {
		return nil, models.WrapPersistence("list varieties", err)
	}
	return varieties, nil
}

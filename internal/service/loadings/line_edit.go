package loadings

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/domain/pricing"
	"github.com/mamadbah2/fishledger/internal/domain/validation"
)

// LineEditRequest changes the shadow copy of a line. Nil fields are left as they are.
type LineEditRequest struct {
	Trays      *int             `json:"trays" validate:"omitempty,gte=0"`
	LooseKgs   *float64         `json:"loose_kgs" validate:"omitempty,gte=0"`
	PricePerKg *decimal.Decimal `json:"price_per_kg"`
}

// LineEditView is the state of a line under edit along with the record
// totals it would produce if saved.
type LineEditView struct {
	RecordID      string              `json:"record_id"`
	State         models.LineState    `json:"state"`
	PerTrayWeight float64             `json:"per_tray_weight"`
	StartedAt     time.Time           `json:"started_at"`
	Original      models.LineItem     `json:"original"`
	Line          models.LineItem     `json:"line"`
	Totals        pricing.Totals      `json:"totals"`
	Notice        *models.ClampNotice `json:"notice,omitempty"`
}

// SaveResult is the record after a line edit was committed.
type SaveResult struct {
	Record *models.LoadingRecord `json:"record"`
	Notice *models.ClampNotice   `json:"notice,omitempty"`
}

// DeleteResult reports what a line deletion left behind. Record is nil when
// the last line was removed and the record went with it.
type DeleteResult struct {
	Record        *models.LoadingRecord `json:"record,omitempty"`
	RecordDeleted bool                  `json:"record_deleted"`
}

// BeginLineEdit opens an edit on a saved line. The per-tray weight is taken
// from the stored line and stays fixed until the edit is saved or cancelled.
func (s *Service) BeginLineEdit(ctx context.Context, recordID, lineID string) (*LineEditView, error) {
	record, err := s.GetLoading(ctx, recordID)
	if err != nil {
		return nil, err
	}
	line, _, ok := record.Line(lineID)
	if !ok {
		return nil, fmt.Errorf("line %s: %w", lineID, models.ErrNotFound)
	}

	session := &EditSession{
		recordID: recordID,
		lineID:   lineID,
		version:  record.Version,
		edit:     pricing.BeginEdit(s.policy, record.Category, line),
		started:  s.now().UTC(),
	}
	s.sessions.UpdateSession(session)

	s.logger.Debug("line edit started",
		zap.String("record_id", recordID),
		zap.String("line_id", lineID),
		zap.Float64("per_tray_weight", session.edit.PerTrayWeight()))

	return s.view(record, session, nil), nil
}

// UpdateLineEdit applies changes to the shadow copy and returns the
// recomputed line and record totals. Dispatch lines are fitted to stock with
// the line's own saved weight released.
func (s *Service) UpdateLineEdit(ctx context.Context, recordID, lineID string, req LineEditRequest) (*LineEditView, error) {
	session, ok := s.sessions.GetSession(recordID, lineID)
	if !ok {
		return nil, models.ErrNoEditSession
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.PricePerKg != nil && req.PricePerKg.IsNegative() {
		return nil, models.NewValidationError("price_per_kg", "must be at least 0")
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.edit.Apply(req.Trays, req.LooseKgs, req.PricePerKg)
	clampNotice, err := s.fitEdit(ctx, session, session.edit.Original().TotalKgs)
	if err != nil {
		return nil, err
	}

	record, err := s.GetLoading(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.view(record, session, clampNotice), nil
}

// SaveLineEdit commits the shadow copy, recomputes the record totals and
// stores the record. The record must not have changed since the edit began.
func (s *Service) SaveLineEdit(ctx context.Context, recordID, lineID string) (*SaveResult, error) {
	session, ok := s.sessions.GetSession(recordID, lineID)
	if !ok {
		return nil, models.ErrNoEditSession
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	unlock := s.locks.lock(session.edit.Shadow().VarietyCode)
	defer unlock()

	record, err := s.GetLoading(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.Version != session.version {
		s.sessions.ClearSession(recordID, lineID)
		return nil, fmt.Errorf("save line %s: %w", lineID, models.ErrVersionConflict)
	}
	current, idx, ok := record.Line(lineID)
	if !ok {
		s.sessions.ClearSession(recordID, lineID)
		return nil, fmt.Errorf("line %s: %w", lineID, models.ErrNotFound)
	}

	// Stock may have moved since the last update.
	clampNotice, err := s.fitEdit(ctx, session, current.TotalKgs)
	if err != nil {
		return nil, err
	}

	shadow := session.edit.Shadow()
	if shadow.Trays == 0 && shadow.LooseKgs == 0 {
		return nil, models.NewValidationError("line", "must carry trays or loose weight")
	}

	record.Lines[idx] = shadow
	s.policy.ApplyTotals(record)
	record.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateLoading(ctx, record, session.version); err != nil {
		return nil, models.WrapPersistence("update loading", err)
	}
	s.sessions.ClearSession(recordID, lineID)

	s.logger.Info("line edit saved",
		zap.String("record_id", recordID),
		zap.String("line_id", lineID),
		zap.Int64("version", record.Version),
		zap.String("grand_total", record.GrandTotal.String()))

	return &SaveResult{Record: record, Notice: clampNotice}, nil
}

// CancelLineEdit discards the shadow copy.
func (s *Service) CancelLineEdit(recordID, lineID string) error {
	if _, ok := s.sessions.GetSession(recordID, lineID); !ok {
		return models.ErrNoEditSession
	}
	s.sessions.ClearSession(recordID, lineID)
	return nil
}

// DeleteLine removes a line from a record. Removing the last line deletes
// the record itself.
func (s *Service) DeleteLine(ctx context.Context, recordID, lineID string) (*DeleteResult, error) {
	record, err := s.GetLoading(ctx, recordID)
	if err != nil {
		return nil, err
	}
	line, idx, ok := record.Line(lineID)
	if !ok {
		return nil, fmt.Errorf("line %s: %w", lineID, models.ErrNotFound)
	}

	unlock := s.locks.lock(line.VarietyCode)
	defer unlock()

	if len(record.Lines) == 1 {
		if err := s.store.DeleteLoading(ctx, recordID, record.Version); err != nil {
			return nil, models.WrapPersistence("delete loading", err)
		}
		s.sessions.ClearRecord(recordID)
		s.logger.Info("last line deleted, record removed",
			zap.String("record_id", recordID),
			zap.String("state", string(models.LineDeleted)))
		return &DeleteResult{RecordDeleted: true}, nil
	}

	expected := record.Version
	record.Lines = append(record.Lines[:idx], record.Lines[idx+1:]...)
	s.policy.ApplyTotals(record)
	record.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateLoading(ctx, record, expected); err != nil {
		return nil, models.WrapPersistence("update loading", err)
	}
	s.sessions.ClearSession(recordID, lineID)

	s.logger.Info("line deleted",
		zap.String("record_id", recordID),
		zap.String("line_id", lineID),
		zap.Int("remaining", len(record.Lines)))
	return &DeleteResult{Record: record}, nil
}

// fitEdit clamps the shadow of a dispatch line, releasing savedKgs back into
// the allowance.
func (s *Service) fitEdit(ctx context.Context, session *EditSession, savedKgs float64) (*models.ClampNotice, error) {
	edit := session.edit
	if !edit.Category().IsDispatch() {
		return nil, nil
	}

	shadow := edit.Shadow()
	clamp, err := s.stock.ClampEditedLine(ctx, shadow.VarietyCode, shadow.Trays, shadow.LooseKgs, savedKgs, edit.PerTrayWeight())
	if err != nil {
		return nil, err
	}
	if !clamp.WasClamped {
		return nil, nil
	}

	line := edit.Apply(&clamp.Trays, &clamp.LooseKgs, nil)
	n := notice(line, clamp)
	return &n, nil
}

func (s *Service) view(record *models.LoadingRecord, session *EditSession, clampNotice *models.ClampNotice) *LineEditView {
	shadow := session.edit.Shadow()
	lines := make([]models.LineItem, len(record.Lines))
	copy(lines, record.Lines)
	if _, idx, ok := record.Line(session.lineID); ok {
		lines[idx] = shadow
	}

	return &LineEditView{
		RecordID:      record.ID,
		State:         models.LineEditing,
		PerTrayWeight: session.edit.PerTrayWeight(),
		StartedAt:     session.started,
		Original:      session.edit.Original(),
		Line:          shadow,
		Totals:        s.policy.RecordTotals(record.Category, lines),
		Notice:        clampNotice,
	}
}

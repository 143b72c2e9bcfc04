package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
	"github.com/mamadbah2/fishledger/internal/service/dues"
	"github.com/mamadbah2/fishledger/internal/service/loadings"
)

// LoadingService is the loadings side of the API.
type LoadingService interface {
	CreateVariety(ctx context.Context, req loadings.CreateVarietyRequest) (models.Variety, error)
	GetVariety(ctx context.Context, code string) (models.Variety, error)
	ListVarieties(ctx context.Context) ([]models.Variety, error)

	CreateLoading(ctx context.Context, req loadings.CreateLoadingRequest) (*loadings.CreateResult, error)
	GetLoading(ctx context.Context, id string) (*models.LoadingRecord, error)
	ListLoadings(ctx context.Context, filter models.LoadingFilter) ([]models.LoadingRecord, error)
	PreviewClamp(ctx context.Context, line loadings.LineRequest, siblings []loadings.LineRequest) (models.ClampResult, error)

	BeginLineEdit(ctx context.Context, recordID, lineID string) (*loadings.LineEditView, error)
	UpdateLineEdit(ctx context.Context, recordID, lineID string, req loadings.LineEditRequest) (*loadings.LineEditView, error)
	SaveLineEdit(ctx context.Context, recordID, lineID string) (*loadings.SaveResult, error)
	CancelLineEdit(recordID, lineID string) error
	DeleteLine(ctx context.Context, recordID, lineID string) (*loadings.DeleteResult, error)
}

// StockService is the stock side of the API.
type StockService interface {
	NetStock(ctx context.Context, variety string) (models.StockPosition, error)
	Positions(ctx context.Context) ([]models.StockPosition, error)
}

// DueService is the reconciliation side of the API.
type DueService interface {
	Account(ctx context.Context, name string, kind models.PartyKind) (models.DueAccount, error)
	PendingAccounts(ctx context.Context, kind models.PartyKind) ([]models.DueAccount, error)
	RecordPayment(ctx context.Context, req dues.RecordPaymentRequest) (*dues.PaymentResult, error)
	Payments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
}

// SnapshotService takes ledger snapshots on demand.
type SnapshotService interface {
	TakeSnapshot(ctx context.Context) (models.LedgerSnapshot, error)
}

// LedgerHandler exposes loadings, stock, payments and dues over HTTP.
type LedgerHandler struct {
	loadings  LoadingService
	stock     StockService
	dues      DueService
	snapshots SnapshotService
	logger    *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(loadingSvc LoadingService, stockSvc StockService, dueSvc DueService, snapshotSvc SnapshotService, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{
		loadings:  loadingSvc,
		stock:     stockSvc,
		dues:      dueSvc,
		snapshots: snapshotSvc,
		logger:    logger,
	}
}

// CreateVariety registers a variety.
func (h *LedgerHandler) CreateVariety(c *gin.Context) {
	var req loadings.CreateVarietyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	variety, err := h.loadings.CreateVariety(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, variety)
}

// ListVarieties returns the catalogue.
func (h *LedgerHandler) ListVarieties(c *gin.Context) {
	varieties, err := h.loadings.ListVarieties(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"varieties": varieties})
}

// GetVariety returns one variety.
func (h *LedgerHandler) GetVariety(c *gin.Context) {
	variety, err := h.loadings.GetVariety(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, variety)
}

// CreateLoading stores an intake or dispatch record.
func (h *LedgerHandler) CreateLoading(c *gin.Context) {
	var req loadings.CreateLoadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	res, err := h.loadings.CreateLoading(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GetLoading returns one record.
func (h *LedgerHandler) GetLoading(c *gin.Context) {
	record, err := h.loadings.GetLoading(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListLoadings filters records by ?category=A,B&party=&variety=.
func (h *LedgerHandler) ListLoadings(c *gin.Context) {
	filter := models.LoadingFilter{
		PartyName: c.Query("party"),
		Variety:   c.Query("variety"),
	}
	if raw := c.Query("category"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			category := models.LoadingCategory(strings.ToUpper(strings.TrimSpace(part)))
			if !category.IsValid() {
				respondError(c, h.logger, models.NewValidationError("category", "must be one of [FARMER_INTAKE AGENT_INTAKE CLIENT_DISPATCH]"))
				return
			}
			filter.Categories = append(filter.Categories, category)
		}
	}

	records, err := h.loadings.ListLoadings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loadings": records})
}

type clampPreviewRequest struct {
	Line     loadings.LineRequest   `json:"line"`
	Siblings []loadings.LineRequest `json:"siblings"`
}

// PreviewClamp shows how a dispatch line would be fitted to stock.
func (h *LedgerHandler) PreviewClamp(c *gin.Context) {
	var req clampPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	res, err := h.loadings.PreviewClamp(c.Request.Context(), req.Line, req.Siblings)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BeginLineEdit opens an edit on a line.
func (h *LedgerHandler) BeginLineEdit(c *gin.Context) {
	view, err := h.loadings.BeginLineEdit(c.Request.Context(), c.Param("id"), c.Param("lineID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateLineEdit changes the shadow copy of a line.
func (h *LedgerHandler) UpdateLineEdit(c *gin.Context) {
	var req loadings.LineEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	view, err := h.loadings.UpdateLineEdit(c.Request.Context(), c.Param("id"), c.Param("lineID"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SaveLineEdit commits a line edit.
func (h *LedgerHandler) SaveLineEdit(c *gin.Context) {
	res, err := h.loadings.SaveLineEdit(c.Request.Context(), c.Param("id"), c.Param("lineID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CancelLineEdit discards a line edit.
func (h *LedgerHandler) CancelLineEdit(c *gin.Context) {
	if err := h.loadings.CancelLineEdit(c.Param("id"), c.Param("lineID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteLine removes a line, and the record with its last line.
func (h *LedgerHandler) DeleteLine(c *gin.Context) {
	res, err := h.loadings.DeleteLine(c.Request.Context(), c.Param("id"), c.Param("lineID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Positions returns the stock of every variety.
func (h *LedgerHandler) Positions(c *gin.Context) {
	positions, err := h.stock.Positions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": positions})
}

// NetStock returns the stock of one variety.
func (h *LedgerHandler) NetStock(c *gin.Context) {
	position, err := h.stock.NetStock(c.Request.Context(), c.Param("variety"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

// RecordPayment stores a payment. An unconfirmed overpayment is answered
// with 200 and requires_confirmation instead of being stored.
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	var req dues.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	res, err := h.dues.RecordPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if res.RequiresConfirmation {
		c.JSON(http.StatusOK, res)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ListPayments filters payments by ?party=&kind=.
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	filter := models.PaymentFilter{
		PartyName: c.Query("party"),
		PartyKind: models.PartyKind(strings.ToUpper(c.Query("kind"))),
	}
	payments, err := h.dues.Payments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// Account returns the balance of ?party= on side ?kind= (CLIENT by default).
func (h *LedgerHandler) Account(c *gin.Context) {
	account, err := h.dues.Account(c.Request.Context(), c.Query("party"), queryKind(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// PendingAccounts lists outstanding dues of side ?kind= (CLIENT by default).
func (h *LedgerHandler) PendingAccounts(c *gin.Context) {
	accounts, err := h.dues.PendingAccounts(c.Request.Context(), queryKind(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// TakeSnapshot stores and exports a ledger snapshot now.
func (h *LedgerHandler) TakeSnapshot(c *gin.Context) {
	snapshot, err := h.snapshots.TakeSnapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

func queryKind(c *gin.Context) models.PartyKind {
	return models.PartyKind(strings.ToUpper(c.DefaultQuery("kind", string(models.PartyClient))))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

// errorStatus maps ledger errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateBillNo),
		errors.Is(err, models.ErrDuplicateVariety),
		errors.Is(err, models.ErrVersionConflict),
		errors.Is(err, models.ErrNoEditSession):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var vErr *models.ValidationError
	if errors.As(err, &vErr) && vErr.Field != "" {
		body["field"] = vErr.Field
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

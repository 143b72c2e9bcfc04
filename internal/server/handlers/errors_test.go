package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("trays", "must be at least 0"), http.StatusBadRequest},
		{fmt.Errorf("line x: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrDuplicateBillNo, http.StatusConflict},
		{models.ErrDuplicateVariety, http.StatusConflict},
		{fmt.Errorf("save: %w", models.ErrVersionConflict), http.StatusConflict},
		{models.ErrNoEditSession, http.StatusConflict},
		{models.WrapPersistence("insert", errors.New("socket closed")), http.StatusInternalServerError},
		{errors.New("anything"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}

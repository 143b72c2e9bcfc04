package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

type lineInput struct {
	Variety string `json:"variety_code" validate:"required"`
	Trays   int    `json:"trays" validate:"gte=0"`
}

type formInput struct {
	Party string      `json:"party_name" validate:"required"`
	Kind  string      `json:"party_kind" validate:"required,oneof=CLIENT VENDOR"`
	Lines []lineInput `json:"lines" validate:"required,min=1,dive"`
}

func TestStruct(t *testing.T) {
	ok := formInput{Party: "Ravi", Kind: "CLIENT", Lines: []lineInput{{Variety: "RC", Trays: 2}}}
	require.NoError(t, Struct(ok))

	tests := []struct {
		name  string
		input formInput
		field string
		msg   string
	}{
		{"missing party", formInput{Kind: "CLIENT", Lines: ok.Lines}, "party_name", "is required"},
		{"bad kind", formInput{Party: "Ravi", Kind: "SUPPLIER", Lines: ok.Lines}, "party_kind", "must be one of [CLIENT VENDOR]"},
		{"no lines", formInput{Party: "Ravi", Kind: "CLIENT", Lines: []lineInput{}}, "lines", "must contain at least 1 item(s)"},
		{"negative trays", formInput{Party: "Ravi", Kind: "CLIENT", Lines: []lineInput{{Variety: "RC", Trays: -1}}}, "lines[0].trays", "must be at least 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))

			var vErr *models.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.msg, vErr.Reason)
		})
	}
}

package middleware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
)

type historyForm struct {
	AsOf   string `form:"as_of" validate:"isodate"`
	Mode   string `form:"mode" validate:"omitempty,oneof=area flat"`
	Name   string `json:"name" validate:"filename"`
	Upload bool   `form:"upload"`
}

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Struct(historyForm{AsOf: "2024-01-05", Mode: "flat", Name: "WIP.xlsx"}))
	require.NoError(t, v.Struct(historyForm{Name: "WIP.xlsx"}))

	err := v.Struct(historyForm{AsOf: "05/01/2024", Mode: "weekly", Name: "../WIP.xlsx"})
	require.Error(t, err)

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

	details, ok := apiErr.Details.(apperrors.ValidationErrors)
	require.True(t, ok)
	fields := map[string]string{}
	for _, fe := range details.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "as_of must be a date in YYYY-MM-DD format", fields["as_of"])
	assert.Equal(t, "mode must be one of: area, flat", fields["mode"])
	assert.Equal(t, "name must be a plain file name", fields["name"])
}

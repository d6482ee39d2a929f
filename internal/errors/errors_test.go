package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_WrapsInternal(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: disk full", err.Error())
	assert.Equal(t, "Case not found", NotFound("Case not found", nil).Error())
}

func TestNewValidationError(t *testing.T) {
	type form struct {
		Name  string `validate:"required"`
		Value string `validate:"max=3"`
	}
	err := validator.New().Struct(form{Value: "long value"})
	require.Error(t, err)

	apiErr := NewValidationError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "is required", apiErr.Fields["name"])
	assert.Equal(t, "must be at most 3 characters", apiErr.Fields["value"])

	plain := NewValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusUnprocessableEntity, plain.Status)
	assert.Empty(t, plain.Fields)
}

package validators

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email  string `validate:"required,email"`
	Status string `validate:"omitempty,oneof=accepted rejected"`
}

func TestValidatePasses(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&sample{Email: "a@example.com", Status: "accepted"}))
	assert.NoError(t, v.Validate(&sample{Email: "a@example.com"}))
}

func TestValidateRejectsWithBadRequest(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sample{Email: "not-an-email", Status: "pending"})
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("refresh: %w", Fetch("Failed to load appointments", cause))

	assert.True(t, Is(err, ErrFetch))
	assert.False(t, Is(err, ErrDelete))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to load appointments", UserMessage(err, "x"))
	assert.Equal(t, "x", UserMessage(cause, "x"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("Invalid appointment ID").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, Delete("nope", nil).HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound("appointment", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal(nil).HTTPStatus())
	assert.Equal(t, "Invalid appointment ID", Validation("Invalid appointment ID").Error())
}

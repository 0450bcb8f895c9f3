package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{apperrors.Validation("Invalid appointment ID"), http.StatusBadRequest, "Invalid appointment ID"},
		{apperrors.Fetch("Failed to load", errors.New("dial tcp")), http.StatusBadGateway, "Failed to load"},
		{apperrors.NotFound("appointment", nil), http.StatusNotFound, "appointment not found"},
		{errors.New("secret detail"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondWithError(c, tt.err)

		assert.Equal(t, tt.status, w.Code)
		r := decode(t, w)
		assert.False(t, r.Success)
		require.NotNil(t, r.Error)
		assert.Equal(t, tt.message, r.Error.Message)
	}
}

func TestWantsHTML(t *testing.T) {
	for accept, want := range map[string]bool{
		"":                                 true,
		"text/html,application/xhtml+xml": true,
		"application/json":                 false,
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if accept != "" {
			c.Request.Header.Set("Accept", accept)
		}
		assert.Equal(t, want, WantsHTML(c), accept)
	}
}

package content

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/web"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := web.Templates()
	require.NoError(t, err)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	NewHandler().RegisterRoutes(r)
	return r
}

func TestToggleMethod(t *testing.T) {
	assert.Equal(t, "cbt", ToggleMethod("", "cbt"))
	assert.Equal(t, "", ToggleMethod("cbt", "cbt"))
	assert.Equal(t, "emdr", ToggleMethod("cbt", "emdr"))
	assert.Equal(t, "", ToggleMethod("cbt", "unknown"))
}

func TestSelectDepartmentDefaultsToFirst(t *testing.T) {
	assert.Equal(t, 3, SelectDepartment(3).ID)
	assert.Equal(t, 1, SelectDepartment(0).ID)
	assert.Equal(t, 1, SelectDepartment(42).ID)
	assert.Len(t, Departments, 5)
}

func TestTherapyPage(t *testing.T) {
	r := newEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/therapy?method=emdr", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Key Benefits:")
	assert.Contains(t, w.Body.String(), "Memory processing")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/therapy?method=emdr", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotContains(t, w.Body.String(), "Key Benefits:")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/therapy?tab=technology", nil))
	assert.Contains(t, w.Body.String(), "VR Exposure Therapy")
	assert.NotContains(t, w.Body.String(), "Somatic Therapy")
}

func TestDepartmentsJSON(t *testing.T) {
	r := newEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/departments?dept=2", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data DepartmentsPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2. Cardiology Care", body.Data.Selected.Title)
	assert.Len(t, body.Data.Departments, 5)
}

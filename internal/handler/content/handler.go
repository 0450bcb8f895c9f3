package content

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/internal/web"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

const methodCookie = "therapy_method"

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/therapy", h.Therapy)
	r.GET("/departments", h.Departments)
}

type TherapyPage struct {
	web.Page
	Tab      string          `json:"tab"`
	Selected string          `json:"selected,omitempty"`
	Methods  []TherapyMethod `json:"methods"`
	Features []TechFeature   `json:"features"`
}

// Therapy renders the therapy platform page. The selected method is kept
// in a cookie so that a second click on the same method deselects it.
func (h *Handler) Therapy(c *gin.Context) {
	current, _ := c.Cookie(methodCookie)
	selected := current
	if clicked, ok := c.GetQuery("method"); ok {
		selected = ToggleMethod(current, clicked)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(methodCookie, selected, 0, "/therapy", "", false, true)
	}

	page := TherapyPage{
		Page:     web.Page{Title: "Evidence-Based Therapy Platform"},
		Tab:      SelectTab(c.Query("tab")),
		Selected: selected,
		Methods:  TherapyMethods,
		Features: TechFeatures,
	}
	if httputil.WantsHTML(c) {
		c.HTML(http.StatusOK, "therapy.html", page)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

type DepartmentsPage struct {
	web.Page
	Selected    Department   `json:"selected"`
	Departments []Department `json:"departments"`
}

func (h *Handler) Departments(c *gin.Context) {
	id, _ := strconv.Atoi(c.Query("dept"))
	page := DepartmentsPage{
		Page:        web.Page{Title: "Departments"},
		Selected:    SelectDepartment(id),
		Departments: Departments,
	}
	if httputil.WantsHTML(c) {
		c.HTML(http.StatusOK, "departments.html", page)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

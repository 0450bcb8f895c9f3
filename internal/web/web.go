// Package web holds the server rendered pages.
package web

import (
	"embed"
	"html/template"

	"github.com/jwalitptl/clinic-dashboard/internal/listing"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// PageSizes are the choices offered by the page size selector.
var PageSizes = []int{5, 10, 20, 50}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"badge": listing.StatusBadge,
		"statuses": func() []model.AppointmentStatus {
			return model.AppointmentStatuses
		},
		"pageSizes": func() []int { return PageSizes },
		"add":       func(a, b int) int { return a + b },
	}
}

// Templates parses every page. The result is handed to gin's
// SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}

// Page carries what the shared layout reads. Page data types embed it.
type Page struct {
	Title    string          `json:"title"`
	Notice   *listing.Notice `json:"notice,omitempty"`
	BasePath string          `json:"-"`
}

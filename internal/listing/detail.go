package listing

import (
	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

type BadgeColor string

const (
	BadgeYellow BadgeColor = "yellow"
	BadgeGreen  BadgeColor = "green"
	BadgeRed    BadgeColor = "red"
	// BadgeGray marks a status outside the known set.
	BadgeGray BadgeColor = "gray"
)

var statusColors = map[model.AppointmentStatus]BadgeColor{
	model.AppointmentStatusPending:   BadgeYellow,
	model.AppointmentStatusConfirmed: BadgeGreen,
	model.AppointmentStatusCancelled: BadgeRed,
}

type Badge struct {
	Label string     `json:"label"`
	Color BadgeColor `json:"color"`
	Known bool       `json:"known"`
}

func StatusBadge(status model.AppointmentStatus) Badge {
	color, ok := statusColors[status]
	if !ok {
		color = BadgeGray
	}
	return Badge{Label: status.Label(), Color: color, Known: ok}
}

// Detail is the read-only projection shown in the detail modal.
type Detail struct {
	ID          string `json:"id"`
	Status      Badge  `json:"status"`
	PatientName string `json:"patientName"`
	Email       string `json:"email"`
	Contact     string `json:"contact"`
	DateOfBirth string `json:"dateOfBirth"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	CreatedBy   string `json:"createdBy"`
}

func NewDetail(a model.Appointment) Detail {
	return Detail{
		ID:          a.ID.String(),
		Status:      StatusBadge(a.Status),
		PatientName: a.PatientName(),
		Email:       a.Email,
		Contact:     a.Contact,
		DateOfBirth: a.DOB.Format(),
		Date:        a.Date.Format(),
		Time:        a.Time,
		CreatedBy:   a.CreatedBy(),
	}
}

// Modal holds at most one selected appointment.
type Modal struct {
	selected *model.Appointment
}

// Open replaces any current selection.
func (m *Modal) Open(a model.Appointment) {
	m.selected = &a
}

func (m *Modal) Close() {
	m.selected = nil
}

func (m Modal) IsOpen() bool {
	return m.selected != nil
}

func (m Modal) Detail() (Detail, bool) {
	if m.selected == nil {
		return Detail{}, false
	}
	return NewDetail(*m.selected), true
}

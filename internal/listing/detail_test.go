package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status model.AppointmentStatus
		want   Badge
	}{
		{model.AppointmentStatusPending, Badge{Label: "Pending", Color: BadgeYellow, Known: true}},
		{model.AppointmentStatusConfirmed, Badge{Label: "Confirmed", Color: BadgeGreen, Known: true}},
		{model.AppointmentStatusCancelled, Badge{Label: "Cancelled", Color: BadgeRed, Known: true}},
		{"rescheduled", Badge{Label: "Rescheduled", Color: BadgeGray}},
		{"", Badge{Color: BadgeGray}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusBadge(tt.status), string(tt.status))
	}
}

func TestNewDetail(t *testing.T) {
	a := model.Appointment{
		ID:        "7",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Contact:   "555",
		DOB:       model.ParseCalendarDate("1815-12-10"),
		Date:      model.ParseCalendarDate("2024-02-29"),
		Time:      "09:00",
		Status:    model.AppointmentStatusConfirmed,
	}

	d := NewDetail(a)
	assert.Equal(t, Detail{
		ID:          "7",
		Status:      Badge{Label: "Confirmed", Color: BadgeGreen, Known: true},
		PatientName: "Ada Lovelace",
		Email:       "ada@example.com",
		Contact:     "555",
		DateOfBirth: "10 Dec 1815",
		Date:        "29 Feb 2024",
		Time:        "09:00",
		CreatedBy:   "N/A",
	}, d)
}

func TestModalStates(t *testing.T) {
	var m Modal
	assert.False(t, m.IsOpen())
	_, ok := m.Detail()
	assert.False(t, ok)

	m.Open(model.Appointment{ID: "1"})
	assert.True(t, m.IsOpen())
	m.Open(model.Appointment{ID: "2"})
	d, ok := m.Detail()
	assert.True(t, ok)
	assert.Equal(t, "2", d.ID)

	m.Close()
	assert.False(t, m.IsOpen())
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		p    Pagination
		want Summary
		text string
	}{
		{"single page", Pagination{Current: 1, PageSize: 10, Total: 3}, Summary{From: 1, To: 3, Total: 3}, "Showing 1 to 3 of 3 appointments"},
		{"middle page", Pagination{Current: 2, PageSize: 10, Total: 35}, Summary{From: 11, To: 20, Total: 35, HasPrevious: true, HasNext: true}, "Showing 11 to 20 of 35 appointments"},
		{"last page", Pagination{Current: 4, PageSize: 10, Total: 35}, Summary{From: 31, To: 35, Total: 35, HasPrevious: true}, "Showing 31 to 35 of 35 appointments"},
		{"exact fit", Pagination{Current: 2, PageSize: 10, Total: 20}, Summary{From: 11, To: 20, Total: 20, HasPrevious: true}, "Showing 11 to 20 of 20 appointments"},
		{"empty", Pagination{Current: 1, PageSize: 10}, Summary{}, "Showing 0 to 0 of 0 appointments"},
		{"page past the data", Pagination{Current: 3, PageSize: 10, Total: 5}, Summary{From: 5, To: 5, Total: 5, HasPrevious: true}, "Showing 5 to 5 of 5 appointments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.p)
			assert.Equal(t, tt.want, s)
			assert.Equal(t, tt.text, s.String())
		})
	}
}

func TestQueryStateDefaults(t *testing.T) {
	q := NewQueryState(0)
	assert.Equal(t, Pagination{Current: 1, PageSize: DefaultPageSize}, q.Pagination())
	assert.Equal(t, Filters{}, q.Filters())
	assert.Equal(t, model.AppointmentQuery{Page: 1, Limit: 10}, q.request())
}

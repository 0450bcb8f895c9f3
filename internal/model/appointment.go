package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists the statuses in the order the filter offers them.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCancelled,
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Label capitalises the first letter, "pending" -> "Pending".
func (s AppointmentStatus) Label() string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(string(s))
	return string(unicode.ToUpper(r)) + string(s[size:])
}

// AppointmentID is the backend identifier. Some deployments send numbers,
// others strings; both decode into the string form.
type AppointmentID string

func (id *AppointmentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = AppointmentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid appointment id %s: %w", string(data), err)
	}
	*id = AppointmentID(n.String())
	return nil
}

func (id AppointmentID) String() string {
	return string(id)
}

const DisplayDateLayout = "02 Jan 2006"

var calendarDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
}

// CalendarDate keeps the raw backend value next to the parsed date so that
// unparseable input still round-trips.
type CalendarDate struct {
	Raw  string
	Time time.Time
	ok   bool
}

func ParseCalendarDate(raw string) CalendarDate {
	d := CalendarDate{Raw: strings.TrimSpace(raw)}
	for _, layout := range calendarDateLayouts {
		if t, err := time.Parse(layout, d.Raw); err == nil {
			d.Time = t
			d.ok = true
			break
		}
	}
	return d
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = CalendarDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: %w", string(data), err)
	}
	*d = ParseCalendarDate(s)
	return nil
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Raw)
}

func (d CalendarDate) Valid() bool {
	return d.ok
}

// Format renders the date as "02 Jan 2006".
func (d CalendarDate) Format() string {
	if d.Raw == "" {
		return ""
	}
	if !d.ok {
		return "Invalid Date"
	}
	return d.Time.Format(DisplayDateLayout)
}

type Creator struct {
	Username string `json:"username"`
}

type Appointment struct {
	ID        AppointmentID     `json:"id"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Email     string            `json:"email"`
	Contact   string            `json:"contact"`
	DOB       CalendarDate      `json:"dob"`
	Date      CalendarDate      `json:"date"`
	Time      string            `json:"time"`
	Status    AppointmentStatus `json:"status"`
	Creator   *Creator          `json:"creator,omitempty"`
}

func (a Appointment) PatientName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CreatedBy returns the creator's username or "N/A".
func (a Appointment) CreatedBy() string {
	if a.Creator == nil || a.Creator.Username == "" {
		return "N/A"
	}
	return a.Creator.Username
}

// AppointmentQuery is the outgoing list request.
type AppointmentQuery struct {
	Page   int
	Limit  int
	Status AppointmentStatus
	Search string
}

// AppointmentPage is the normalized list response.
type AppointmentPage struct {
	Appointments []Appointment `json:"appointments"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
}

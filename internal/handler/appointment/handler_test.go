package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/listing"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/session"
	"github.com/jwalitptl/clinic-dashboard/internal/web"
	"github.com/jwalitptl/clinic-dashboard/pkg/event"
)

type fakeBackend struct {
	mu      sync.Mutex
	items   []model.Appointment
	fail    bool
	queries []model.AppointmentQuery
	deleted []string
}

func (f *fakeBackend) ListAppointments(_ context.Context, q model.AppointmentQuery) (*model.AppointmentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail {
		return nil, errors.New("backend unavailable")
	}
	items := append([]model.Appointment(nil), f.items...)
	return &model.AppointmentPage{Appointments: items, Total: len(items), Page: q.Page}, nil
}

func (f *fakeBackend) DeleteAppointment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	kept := f.items[:0:0]
	for _, a := range f.items {
		if a.ID.String() != id {
			kept = append(kept, a)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeBackend) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeBackend) lastQuery() model.AppointmentQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type recordingBroker struct {
	mu       sync.Mutex
	messages []string
}

func (b *recordingBroker) Publish(_ context.Context, _ string, message interface{}) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, string(raw))
	return nil
}

func (b *recordingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *recordingBroker) Ping(context.Context) error { return nil }

func (b *recordingBroker) Close() error { return nil }

func sampleAppointments() []model.Appointment {
	return []model.Appointment{
		{ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Date: model.ParseCalendarDate("2024-03-01"), Time: "09:00", Status: model.AppointmentStatusPending},
		{ID: "2", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Date: model.ParseCalendarDate("2024-03-02"), Time: "10:00", Status: model.AppointmentStatusConfirmed},
		{ID: "3", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Date: model.ParseCalendarDate("2024-03-03"), Time: "11:00", Status: "rescheduled"},
	}
}

type testServer struct {
	engine  *gin.Engine
	handler *Handler
	backend *fakeBackend
	broker  *recordingBroker
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	be := &fakeBackend{items: sampleAppointments()}
	broker := &recordingBroker{}
	store := session.NewStore(time.Minute, func() *listing.View {
		return listing.NewView(be, listing.Options{})
	}, nil)
	tracker := event.NewEventTrackerMiddleware(event.NewPublisher(broker, "dashboard.events", nil, nil))
	h := NewHandler(Options{ReconcileAfterDelete: true})

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(store.Middleware(session.CookieConfig{Name: "sid", MaxAge: time.Minute}))
	h.RegisterRoutesWithEvents(r.Group("/dashboard"), tracker)
	h.RegisterRoutesWithEvents(r.Group("/api/v1/dashboard", JSONOnly()), tracker)

	return &testServer{engine: r, handler: h, backend: be, broker: broker}
}

func (s *testServer) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" {
			s.cookie = c
		}
	}
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) (envelope, listing.Snapshot) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var s listing.Snapshot
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &s))
	}
	return env, s
}

func TestListRendersHTML(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/dashboard/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "01 Mar 2024")
	assert.Contains(t, body, "badge-gray")
	assert.Contains(t, body, "Showing 1 to 3 of 3 appointments")
	assert.Equal(t, 1, s.backend.queryCount())

	w = s.do(http.MethodGet, "/dashboard/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.backend.queryCount(), "session view is reused")
}

func TestListAppliesQueryParameters(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/dashboard/appointments?search=ada&status=pending&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env, snap := decodeSnapshot(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "ada", snap.Filters.Search)
	assert.Equal(t, model.AppointmentQuery{Page: 1, Limit: 5, Status: model.AppointmentStatusPending, Search: "ada"}, s.backend.lastQuery())

	s.do(http.MethodGet, "/api/v1/dashboard/appointments?page=2", nil)
	assert.Equal(t, 2, s.backend.lastQuery().Page)
	assert.Equal(t, "ada", s.backend.lastQuery().Search)

	// an unchanged filter is not a new action
	w = s.do(http.MethodGet, "/api/v1/dashboard/appointments?search=ada", nil)
	_, snap = decodeSnapshot(t, w)
	assert.Equal(t, 2, snap.Pagination.Current)
	assert.Equal(t, 2, s.backend.queryCount())
}

func TestListRejectsInvalidInput(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/dashboard/appointments?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env, snap := decodeSnapshot(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, listing.NoticeError, snap.Notice.Kind)

	w = s.do(http.MethodGet, "/dashboard/appointments?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid query parameters")
	assert.Equal(t, 0, s.backend.queryCount())
}

func TestListFetchFailure(t *testing.T) {
	s := newTestServer(t)
	s.backend.fail = true

	w := s.do(http.MethodGet, "/dashboard/appointments", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), listing.FetchFailedMessage)
	assert.NotContains(t, w.Body.String(), "Ada Lovelace")
}

func TestShowAndCloseModal(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/dashboard/appointments/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var d listing.Detail
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "Alan Turing", d.PatientName)
	assert.Equal(t, "N/A", d.CreatedBy)

	w = s.do(http.MethodGet, "/dashboard/appointments/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Appointment Details")
	assert.Contains(t, w.Body.String(), "Rescheduled")

	w = s.do(http.MethodGet, "/api/v1/dashboard/appointments/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/dashboard/appointments/modal/close", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/appointments", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/dashboard/appointments", nil)
	assert.NotContains(t, w.Body.String(), "Appointment Details")
}

func TestEditRedirects(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/dashboard/appointments/2/edit", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/appointment/edit/2", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/api/v1/dashboard/appointments/undefined/edit", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), listing.InvalidIDMessage)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/dashboard/appointments", nil)

	w := s.do(http.MethodPost, "/dashboard/appointments/2/delete", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), listing.DeletePrompt)
	assert.Contains(t, w.Body.String(), "Alan Turing")

	w = s.do(http.MethodPost, "/api/v1/dashboard/appointments/2/delete", url.Values{})
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)

	assert.Empty(t, s.backend.deleted)
	assert.Empty(t, s.broker.messages)
}

func TestDeleteConfirmed(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/dashboard/appointments", nil)

	w := s.do(http.MethodPost, "/api/v1/dashboard/appointments/2/delete", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusOK, w.Code)
	_, snap := decodeSnapshot(t, w)
	assert.Len(t, snap.Appointments, 2)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, listing.DeleteSuccessMessage, snap.Notice.Message)
	assert.Equal(t, []string{"2"}, s.backend.deleted)

	require.Len(t, s.broker.messages, 1)
	assert.Contains(t, s.broker.messages[0], `"type":"appointment.deleted"`)
	assert.Contains(t, s.broker.messages[0], `"id":"2"`)

	s.handler.Wait()
	assert.Equal(t, 2, s.backend.queryCount())

	w = s.do(http.MethodGet, "/api/v1/dashboard/appointments", nil)
	_, snap = decodeSnapshot(t, w)
	assert.Equal(t, 2, snap.Pagination.Total)
	assert.Nil(t, snap.Notice, "notice is shown once")
}

func TestDeleteHTMLRedirectsWithNotice(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/dashboard/appointments", nil)

	w := s.do(http.MethodPost, "/dashboard/appointments/1/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	s.handler.Wait()

	w = s.do(http.MethodGet, "/dashboard/appointments", nil)
	assert.Contains(t, w.Body.String(), listing.DeleteSuccessMessage)
	assert.NotContains(t, w.Body.String(), "Ada Lovelace")
}

// Package listing implements the appointment listing view: query state,
// page fetching, row actions and the detail modal. A View is safe for
// concurrent use; the backend round trip happens outside its lock and only
// the most recently issued fetch may write its result.
package listing

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const (
	FetchFailedMessage   = "Failed to load appointments. Please try again later."
	DeleteFailedMessage  = "Failed to delete appointment. Please try again later."
	DeleteSuccessMessage = "Appointment deleted successfully!"
	DeletePrompt         = "Are you sure you want to delete this appointment?"
	InvalidIDMessage     = "Invalid appointment ID"

	DefaultEditPathPrefix = "/dashboard/appointment/edit"
)

// ErrSuperseded is returned by a fetch whose response arrived after a newer
// fetch was issued. Its result is dropped.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Backend is the appointment REST API as seen by the view.
type Backend interface {
	ListAppointments(ctx context.Context, q model.AppointmentQuery) (*model.AppointmentPage, error)
	DeleteAppointment(ctx context.Context, id string) error
}

type Options struct {
	PageSize       int
	EditPathPrefix string
	Metrics        *metrics.Metrics
	Logger         *zerolog.Logger
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-shot message for the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

type View struct {
	backend    Backend
	editPrefix string
	metrics    *metrics.Metrics
	logger     *zerolog.Logger

	mu             sync.Mutex
	query          QueryState
	items          []model.Appointment
	loading        bool
	loaded         bool
	errMsg         string
	token          uint64
	modal          Modal
	notice         *Notice
	needsReconcile bool
}

func NewView(backend Backend, opts Options) *View {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	prefix := strings.TrimRight(opts.EditPathPrefix, "/")
	if prefix == "" {
		prefix = DefaultEditPathPrefix
	}
	return &View{
		backend:    backend,
		editPrefix: prefix,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		query:      NewQueryState(opts.PageSize),
		items:      []model.Appointment{},
	}
}

// Snapshot is a copy of the view state for rendering.
type Snapshot struct {
	Appointments []model.Appointment `json:"appointments"`
	Pagination   Pagination          `json:"pagination"`
	Filters      Filters             `json:"filters"`
	Summary      Summary             `json:"summary"`
	Loading      bool                `json:"loading"`
	Loaded       bool                `json:"loaded"`
	Error        string              `json:"error,omitempty"`
	Selected     *Detail             `json:"selected,omitempty"`
	Notice       *Notice             `json:"notice,omitempty"`
}

// Empty reports whether the table has no rows to show.
func (s Snapshot) Empty() bool {
	return len(s.Appointments) == 0
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	items := make([]model.Appointment, len(v.items))
	copy(items, v.items)
	s := Snapshot{
		Appointments: items,
		Pagination:   v.query.pagination,
		Filters:      v.query.filters,
		Summary:      Summarize(v.query.pagination),
		Loading:      v.loading,
		Loaded:       v.loaded,
		Error:        v.errMsg,
	}
	if d, ok := v.modal.Detail(); ok {
		s.Selected = &d
	}
	if v.notice != nil {
		n := *v.notice
		s.Notice = &n
	}
	return s
}

// TakeNotice returns the pending notice and clears it.
func (v *View) TakeNotice() *Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := v.notice
	v.notice = nil
	return n
}

func (v *View) setNoticeLocked(kind NoticeKind, msg string) {
	v.notice = &Notice{Kind: kind, Message: msg}
}

// Apply runs the mutations as one user action and, if all of them are
// accepted, fetches once. A rejected mutation leaves the state untouched.
func (v *View) Apply(ctx context.Context, mutations ...Mutation) (Snapshot, error) {
	v.mu.Lock()
	next := v.query
	for _, m := range mutations {
		if err := m(&next); err != nil {
			v.setNoticeLocked(NoticeError, apperrors.UserMessage(err, err.Error()))
			s := v.snapshotLocked()
			v.mu.Unlock()
			return s, err
		}
	}
	v.query = next
	v.mu.Unlock()

	return v.Refresh(ctx)
}

// EnsureLoaded performs the initial load once.
func (v *View) EnsureLoaded(ctx context.Context) (Snapshot, error) {
	v.mu.Lock()
	loaded := v.loaded || v.loading
	v.mu.Unlock()
	if loaded {
		return v.Snapshot(), nil
	}
	return v.Refresh(ctx)
}

// Refresh fetches the page described by the current query state.
func (v *View) Refresh(ctx context.Context) (Snapshot, error) {
	v.mu.Lock()
	v.token++
	token := v.token
	req := v.query.request()
	v.loading = true
	v.errMsg = ""
	v.mu.Unlock()

	page, err := v.backend.ListAppointments(ctx, req)

	v.mu.Lock()
	defer v.mu.Unlock()

	if token != v.token {
		v.metrics.FetchesDiscarded.Inc()
		v.logger.Debug().
			Uint64("token", token).
			Uint64("latest", v.token).
			Msg("discarding stale appointment page")
		return v.snapshotLocked(), ErrSuperseded
	}

	v.loading = false
	v.loaded = true

	if err != nil {
		v.errMsg = FetchFailedMessage
		v.items = []model.Appointment{}
		v.logger.Error().Err(err).
			Int("page", req.Page).
			Int("limit", req.Limit).
			Msg("error fetching appointments")
		return v.snapshotLocked(), apperrors.Fetch(FetchFailedMessage, err)
	}

	v.items = append([]model.Appointment(nil), page.Appointments...)
	if v.items == nil {
		v.items = []model.Appointment{}
	}
	v.query.pagination.Total = page.Total
	v.query.pagination.Current = page.Page
	v.needsReconcile = false

	for _, a := range v.items {
		if !a.Status.Valid() {
			v.logger.Warn().
				Str("appointment_id", a.ID.String()).
				Str("status", string(a.Status)).
				Msg("appointment has unknown status")
		}
	}

	return v.snapshotLocked(), nil
}

// Reconcile re-fetches the current page after a local delete so that the
// total catches up with the server. It is a no-op otherwise.
func (v *View) Reconcile(ctx context.Context) (Snapshot, error) {
	v.mu.Lock()
	needed := v.needsReconcile
	v.mu.Unlock()
	if !needed {
		return v.Snapshot(), nil
	}
	return v.Refresh(ctx)
}

// NeedsReconcile reports whether a delete has left Total behind the server.
func (v *View) NeedsReconcile() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.needsReconcile
}

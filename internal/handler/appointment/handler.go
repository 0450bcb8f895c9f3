package appointment

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/listing"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/session"
	"github.com/jwalitptl/clinic-dashboard/internal/web"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/event"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

const (
	DefaultBasePath = "/dashboard/appointments"

	contextJSONOnly = "json_only"
	confirmValue    = "yes"
)

type Options struct {
	// BasePath is where the HTML listing is mounted; links and redirects
	// point there.
	BasePath             string
	ReconcileAfterDelete bool
	ReconcileTimeout     time.Duration
	Logger               *zerolog.Logger
}

// Handler serves the appointment listing of the caller's session view.
type Handler struct {
	basePath         string
	reconcile        bool
	reconcileTimeout time.Duration
	logger           *zerolog.Logger
	wg               sync.WaitGroup
}

func NewHandler(opts Options) *Handler {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	if opts.ReconcileTimeout <= 0 {
		opts.ReconcileTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return &Handler{
		basePath:         opts.BasePath,
		reconcile:        opts.ReconcileAfterDelete,
		reconcileTimeout: opts.ReconcileTimeout,
		logger:           opts.Logger,
	}
}

// JSONOnly makes every handler below it answer in the JSON envelope.
func JSONOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextJSONOnly, true)
		c.Next()
	}
}

func (h *Handler) RegisterRoutesWithEvents(rg *gin.RouterGroup, tracker *event.EventTrackerMiddleware) {
	appointments := rg.Group("/appointments")
	{
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Show)
		appointments.POST("/modal/close", h.CloseModal)
		appointments.POST("/:id/edit", h.Edit)
		appointments.POST("/:id/delete", tracker.TrackEvent("appointment", "deleted"), h.Delete)
	}
}

// Wait blocks until background reconciles have finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

type listQuery struct {
	Search   *string `form:"search"`
	Status   *string `form:"status"`
	Page     *int    `form:"page"`
	PageSize *int    `form:"page_size" binding:"omitempty,max=500"`
}

// mutations turns the parameters that differ from the current state into
// one user action. Filters come first so that an explicit page survives
// their page reset.
func (q listQuery) mutations(s listing.Snapshot) []listing.Mutation {
	var ms []listing.Mutation
	if q.Status != nil && model.AppointmentStatus(*q.Status) != s.Filters.Status {
		ms = append(ms, listing.Status(model.AppointmentStatus(*q.Status)))
	}
	if q.Search != nil && *q.Search != s.Filters.Search {
		ms = append(ms, listing.Search(*q.Search))
	}
	if q.PageSize != nil && *q.PageSize != s.Pagination.PageSize {
		ms = append(ms, listing.PageSize(*q.PageSize))
	}
	if q.Page != nil && *q.Page != s.Pagination.Current {
		ms = append(ms, listing.Page(*q.Page))
	}
	return ms
}

type listingPage struct {
	web.Page
	Snapshot listing.Snapshot
}

type confirmPage struct {
	web.Page
	ID     string
	Prompt string
	Detail *listing.Detail
}

func (h *Handler) List(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respond(c, view, view.Snapshot(), apperrors.BadRequest("Invalid query parameters", err))
		return
	}

	ctx := c.Request.Context()
	var (
		s   listing.Snapshot
		err error
	)
	if ms := q.mutations(view.Snapshot()); len(ms) > 0 {
		s, err = view.Apply(ctx, ms...)
	} else {
		s, err = view.EnsureLoaded(ctx)
	}
	h.respond(c, view, s, err)
}

// Show opens the detail modal for a row of the current page.
func (h *Handler) Show(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	if s, err := view.EnsureLoaded(c.Request.Context()); err != nil && !errors.Is(err, listing.ErrSuperseded) {
		h.respond(c, view, s, err)
		return
	}

	d, err := view.Open(c.Param("id"))
	if h.jsonOnly(c) {
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, d)
		return
	}
	h.respond(c, view, view.Snapshot(), err)
}

func (h *Handler) CloseModal(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	view.CloseModal()
	if h.jsonOnly(c) {
		httputil.RespondWithSuccess(c, view.Snapshot())
		return
	}
	c.Redirect(http.StatusSeeOther, h.basePath)
}

// Edit hands over to the edit form. An invalid id leaves a notice on the
// listing instead.
func (h *Handler) Edit(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	dest, err := view.Edit(c.Param("id"))
	if h.jsonOnly(c) {
		if err != nil {
			view.TakeNotice()
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, gin.H{"location": dest})
		return
	}
	if err != nil {
		c.Redirect(http.StatusSeeOther, h.basePath)
		return
	}
	c.Redirect(http.StatusSeeOther, dest)
}

// Delete needs confirm=yes in the form or query. Without it the HTML
// client gets the confirmation page and the JSON client a 428 carrying
// the prompt.
func (h *Handler) Delete(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if c.PostForm("confirm") != confirmValue && c.Query("confirm") != confirmValue {
		h.askConfirmation(c, view, id)
		return
	}

	s, err := view.Delete(c.Request.Context(), id, listing.Confirmed(true))
	if err == nil {
		if ectx, ok := event.FromContext(c); ok {
			ectx.Data = gin.H{"id": id}
			ectx.Additional = map[string]interface{}{
				"user_id":    c.GetString("user_id"),
				"session_id": c.GetString(session.ContextSessionKey),
			}
		}
		h.scheduleReconcile(c, view)
	} else {
		_ = c.Error(err)
	}

	if h.jsonOnly(c) {
		s.Notice = view.TakeNotice()
		if err != nil {
			httputil.RespondWithErrorData(c, err, s)
			return
		}
		httputil.RespondWithSuccess(c, s)
		return
	}
	c.Redirect(http.StatusSeeOther, h.basePath)
}

func (h *Handler) askConfirmation(c *gin.Context, view *listing.View, id string) {
	if h.jsonOnly(c) {
		c.JSON(http.StatusPreconditionRequired, httputil.Response{
			Success: false,
			Error: &httputil.Error{
				Code:    http.StatusPreconditionRequired,
				Message: listing.DeletePrompt,
			},
		})
		return
	}

	page := confirmPage{
		Page:   web.Page{Title: "Delete appointment", BasePath: h.basePath},
		ID:     id,
		Prompt: listing.DeletePrompt,
	}
	for _, a := range view.Snapshot().Appointments {
		if a.ID.String() == id {
			d := listing.NewDetail(a)
			page.Detail = &d
			break
		}
	}
	c.HTML(http.StatusOK, "confirm_delete.html", page)
}

func (h *Handler) scheduleReconcile(c *gin.Context, view *listing.View) {
	if !h.reconcile {
		return
	}
	// Keep the forwarded token but not the request's cancellation.
	base := context.WithoutCancel(c.Request.Context())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(base, h.reconcileTimeout)
		defer cancel()
		if _, err := view.Reconcile(ctx); err != nil && !errors.Is(err, listing.ErrSuperseded) {
			h.logger.Warn().Err(err).Msg("reconcile after delete failed")
		}
	}()
}

func (h *Handler) respond(c *gin.Context, view *listing.View, s listing.Snapshot, err error) {
	if errors.Is(err, listing.ErrSuperseded) {
		// A newer request owns the view; show what it produced.
		s, err = view.Snapshot(), nil
	}

	s.Notice = view.TakeNotice()
	status := http.StatusOK
	if err != nil {
		status, _ = httputil.StatusAndMessage(err)
		if s.Notice == nil && !apperrors.Is(err, apperrors.ErrFetch) {
			s.Notice = &listing.Notice{Kind: listing.NoticeError, Message: apperrors.UserMessage(err, err.Error())}
		}
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
	}

	if h.jsonOnly(c) {
		if err != nil {
			httputil.RespondWithErrorData(c, err, s)
			return
		}
		httputil.RespondWithSuccess(c, s)
		return
	}

	c.HTML(status, "appointments.html", listingPage{
		Page: web.Page{
			Title:    "Appointments",
			Notice:   s.Notice,
			BasePath: h.basePath,
		},
		Snapshot: s,
	})
}

func (h *Handler) view(c *gin.Context) (*listing.View, bool) {
	view, ok := session.ViewFromContext(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Internal(errors.New("no listing view attached to request")))
		return nil, false
	}
	return view, true
}

func (h *Handler) jsonOnly(c *gin.Context) bool {
	return c.GetBool(contextJSONOnly) || !httputil.WantsHTML(c)
}

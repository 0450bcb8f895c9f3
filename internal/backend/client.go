package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const (
	listPath   = "/appoint/list"
	deletePath = "/appoint/delete/"

	maxErrorBody = 4 << 10
)

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Operation, e.StatusCode, e.Body)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Token is sent as a bearer token unless the request context carries one.
	Token      string
	Breaker    circuitbreaker.Settings
	HTTPClient *http.Client
}

// Client talks to the appointment REST backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	metrics    *metrics.Metrics
	logger     *zerolog.Logger
}

func NewClient(cfg Config, m *metrics.Metrics, logger *zerolog.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if m == nil {
		m = metrics.Nop()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	settings := cfg.Breaker
	if settings.Name == "" {
		settings.Name = "appointment-backend"
	}
	// 4xx answers are the caller's problem, not the backend's health.
	settings.IsFailure = func(err error) bool {
		var se *StatusError
		if errors.As(err, &se) {
			return se.StatusCode >= 500
		}
		return !errors.Is(err, context.Canceled)
	}
	settings.OnStateChange = func(name string, from, to circuitbreaker.State) {
		m.BreakerState.WithLabelValues(name).Set(float64(to))
		logger.Warn().
			Str("breaker", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("backend circuit breaker state changed")
	}

	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(settings),
		metrics:    m,
		logger:     logger,
	}, nil
}

// BreakerState reports the breaker state; used by readiness checks.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// ListAppointments fetches one page. Empty filters are left out of the query.
func (c *Client) ListAppointments(ctx context.Context, q model.AppointmentQuery) (*model.AppointmentPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	var page *model.AppointmentPage
	err := c.do(ctx, "list", http.MethodGet, c.baseURL+listPath+"?"+params.Encode(), func(resp *http.Response) error {
		p, err := decodePage(resp.Body)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// DeleteAppointment removes one appointment. The response body is ignored.
func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("appointment id is required")
	}
	return c.do(ctx, "delete", http.MethodDelete, c.baseURL+deletePath+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, op, method, target string, handle func(*http.Response) error) error {
	start := time.Now()
	err := c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return fmt.Errorf("%s: build request: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")
		if token := c.tokenFor(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return &StatusError{Operation: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		if handle == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return handle(resp)
	})

	status := "success"
	if err != nil {
		status = "error"
		c.logger.Error().Err(err).Str("operation", op).Str("method", method).Msg("appointment backend request failed")
	}
	c.metrics.BackendRequests.WithLabelValues(op, status).Inc()
	c.metrics.BackendLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return err
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token := TokenFromContext(ctx); token != "" {
		return token
	}
	return c.token
}

type listEnvelope struct {
	Appointments []model.Appointment `json:"appointments"`
	Total        *int                `json:"total"`
	Page         *int                `json:"page"`
}

func decodePage(r io.Reader) (*model.AppointmentPage, error) {
	var env listEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("list: decode response: %w", err)
	}
	page := &model.AppointmentPage{
		Appointments: env.Appointments,
		Page:         1,
	}
	if page.Appointments == nil {
		page.Appointments = []model.Appointment{}
	}
	if env.Total != nil && *env.Total > 0 {
		page.Total = *env.Total
	}
	if env.Page != nil && *env.Page > 0 {
		page.Page = *env.Page
	}
	return page, nil
}

type tokenKey struct{}

// WithToken attaches a caller's bearer token to ctx so it is forwarded upstream.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

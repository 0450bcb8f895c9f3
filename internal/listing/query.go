package listing

import (
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

const DefaultPageSize = 10

type Pagination struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

type Filters struct {
	Status model.AppointmentStatus `json:"status,omitempty"`
	Search string                  `json:"search,omitempty"`
}

// QueryState holds pagination and filters. Changing a filter or the page
// size moves back to page 1; Current never drops below 1.
type QueryState struct {
	pagination Pagination
	filters    Filters
}

func NewQueryState(pageSize int) QueryState {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return QueryState{pagination: Pagination{Current: 1, PageSize: pageSize}}
}

func (q QueryState) Pagination() Pagination { return q.pagination }

func (q QueryState) Filters() Filters { return q.filters }

func (q *QueryState) SetSearch(search string) {
	q.filters.Search = search
	q.pagination.Current = 1
}

// SetStatus narrows the list to one status; the empty status means all.
func (q *QueryState) SetStatus(status model.AppointmentStatus) error {
	if status != "" && !status.Valid() {
		return apperrors.Validation("Invalid appointment status")
	}
	q.filters.Status = status
	q.pagination.Current = 1
	return nil
}

func (q *QueryState) SetPageSize(size int) error {
	if size < 1 {
		return apperrors.Validation("Page size must be at least 1")
	}
	q.pagination.PageSize = size
	q.pagination.Current = 1
	return nil
}

func (q *QueryState) SetPage(page int) error {
	if page < 1 {
		return apperrors.Validation("Page must be at least 1")
	}
	q.pagination.Current = page
	return nil
}

// request builds the outgoing list query for the current state.
func (q QueryState) request() model.AppointmentQuery {
	return model.AppointmentQuery{
		Page:   q.pagination.Current,
		Limit:  q.pagination.PageSize,
		Status: q.filters.Status,
		Search: q.filters.Search,
	}
}

// Mutation is one user change to the query state.
type Mutation func(*QueryState) error

func Search(search string) Mutation {
	return func(q *QueryState) error {
		q.SetSearch(search)
		return nil
	}
}

func Status(status model.AppointmentStatus) Mutation {
	return func(q *QueryState) error { return q.SetStatus(status) }
}

func Page(page int) Mutation {
	return func(q *QueryState) error { return q.SetPage(page) }
}

func PageSize(size int) Mutation {
	return func(q *QueryState) error { return q.SetPageSize(size) }
}

func NextPage() Mutation {
	return func(q *QueryState) error { return q.SetPage(q.pagination.Current + 1) }
}

func PreviousPage() Mutation {
	return func(q *QueryState) error { return q.SetPage(q.pagination.Current - 1) }
}

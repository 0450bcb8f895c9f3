package listing

import "fmt"

// Summary is the range line and navigation state under the table.
type Summary struct {
	From        int  `json:"from"`
	To          int  `json:"to"`
	Total       int  `json:"total"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

func Summarize(p Pagination) Summary {
	s := Summary{
		Total:       p.Total,
		HasPrevious: p.Current > 1,
		HasNext:     p.Current*p.PageSize < p.Total,
	}
	if p.Total > 0 {
		s.From = (p.Current-1)*p.PageSize + 1
		s.To = min(p.Current*p.PageSize, p.Total)
		// the backend may report a page past the data
		s.From = min(s.From, s.To)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("Showing %d to %d of %d appointments", s.From, s.To, s.Total)
}

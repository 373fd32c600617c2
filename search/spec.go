package search

// Filter is one field=value constraint. Field names have already been
// checked against the handler's allowlist by the query translation layer.
type Filter struct {
	Field string
	Value string
}

// Spec is a structured query, built once per request by the query translation
// layer and consumed exactly once. An empty Term is a valid match-all query.
// Filters are kept sorted by field name so that identical inputs always
// produce an identical spec.
type Spec struct {
	Term     string
	Filters  []Filter
	Ordering []string
	Page     int
	PageSize int
}

// Offset returns the zero-based result offset for the spec's page.
func (s Spec) Offset() int {
	page := s.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * s.PageSize
}

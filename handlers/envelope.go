package handlers

import (
	"searchlight/db"
	"searchlight/search"
)

// Wire-contract values of the filter_status envelope field.
const (
	FilterStatusOK     = "Ok"
	FilterStatusFailed = "Failed"
)

// Envelope is the list response. The field names are part of the wire
// contract consumed by clients and must remain stable.
type Envelope struct {
	Count           uint64                        `json:"count"`
	Previous        *int                          `json:"previous"`
	Next            *int                          `json:"next"`
	Results         []map[string]any              `json:"results"`
	Facets          map[string][]search.FacetTerm `json:"facets,omitempty"`
	Suggestions     map[string][]string           `json:"suggestions,omitempty"`
	FilterStatus    string                        `json:"filter_status"`
	FilterFailCause string                        `json:"filter_fail_cause,omitempty"`
}

// envelopeFromResult builds the envelope for a search-backend result
func envelopeFromResult(res *search.Result, spec search.Spec) *Envelope {
	results := make([]map[string]any, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, hit.Fields)
	}
	env := &Envelope{
		Count:       res.Total,
		Results:     results,
		Facets:      res.Facets,
		Suggestions: res.Suggestions,
	}
	env.paginate(spec, len(results))
	return env
}

// envelopeFromQueryResult builds the envelope for a database result. Facets
// and suggestions are index features and are absent in degraded mode.
func envelopeFromQueryResult(qr *db.QueryResult, spec search.Spec) *Envelope {
	results := make([]map[string]any, 0, len(qr.Records))
	for _, rec := range qr.Records {
		results = append(results, rec.Fields)
	}
	env := &Envelope{
		Count:   uint64(qr.Total),
		Results: results,
	}
	env.paginate(spec, len(results))
	return env
}

// paginate fills the previous/next page markers
func (e *Envelope) paginate(spec search.Spec, pageLen int) {
	page := spec.Page
	if page < 1 {
		page = 1
	}
	if page > 1 {
		prev := page - 1
		e.Previous = &prev
	}
	if uint64(spec.Offset()+pageLen) < e.Count {
		next := page + 1
		e.Next = &next
	}
}

package search

import (
	"searchlight/models"
)

// FacetTerm is one aggregated value of a facet field.
type FacetTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Hit is one matched document.
type Hit struct {
	ID     string
	Fields map[string]any
}

// Result is the outcome of one structured query. An empty Hits slice is a
// valid result, not an error.
type Result struct {
	Total       uint64
	Hits        []Hit
	Facets      map[string][]FacetTerm
	Suggestions map[string][]string
}

// Backend is the narrow search-backend contract. The production
// implementation is bleve; tests substitute fakes.
type Backend interface {
	// EnsureIndex idempotently creates the entity's index and applies its
	// mapping. Returns an error wrapping ErrIndexCreation if the backend
	// rejects the mapping.
	EnsureIndex(entity *models.EntityType) error

	// RebuildIndex drops and recreates the entity's index.
	RebuildIndex(entity *models.EntityType) error

	// Index upserts one document keyed by id.
	Index(entity *models.EntityType, id string, doc map[string]any) error

	// Delete removes one document by id. Deleting a missing document is not
	// an error.
	Delete(entity *models.EntityType, id string) error

	// Get fetches one document by id. Returns an error wrapping ErrNotFound
	// when the document does not exist.
	Get(entity *models.EntityType, id string) (map[string]any, error)

	// Search executes a structured query.
	Search(entity *models.EntityType, spec Spec) (*Result, error)

	// Complete returns completion-field values starting with prefix.
	Complete(entity *models.EntityType, prefix string, limit int) ([]string, error)
}

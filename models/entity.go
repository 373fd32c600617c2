package models

import (
	"fmt"
)

// SearchSettings opts an entity type into indexing. An entity type without
// SearchSettings is served from the database only and skipped by the
// lifecycle hooks.
type SearchSettings struct {
	Index            string            `json:"index,omitempty"`
	Fields           []string          `json:"fields"`
	Mapping          map[string]string `json:"mapping,omitempty"`
	FacetsFields     []string          `json:"facets_fields,omitempty"`
	FacetsLimit      int               `json:"facets_limit,omitempty"`
	SuggestFields    []string          `json:"suggest_fields,omitempty"`
	CompletionFields []string          `json:"completion_fields,omitempty"`
	DefaultOrdering  []string          `json:"default_ordering,omitempty"`
}

// ListSettings configures the list handler for an entity type. These are the
// handler-level defaults, overridden by explicit request parameters and
// overriding the entity-level SearchSettings defaults.
type ListSettings struct {
	FilterFields    []string `json:"filter_fields,omitempty"`
	DefaultOrdering []string `json:"default_ordering,omitempty"`
	SearchParam     string   `json:"search_param,omitempty"`
	PageSize        int      `json:"page_size,omitempty"`

	// SearchColumns are the text columns the degraded database path matches
	// the free-text term against. When empty the term is ignored on fallback.
	SearchColumns []string `json:"search_columns,omitempty"`
}

// EntityType describes one authoritative-store record type and, optionally,
// its search-index representation.
type EntityType struct {
	Name       string   `json:"name"`
	Schema     string   `json:"schema,omitempty"`
	Table      string   `json:"table"`
	PrimaryKey string   `json:"primary_key"`
	Columns    []string `json:"columns,omitempty"`

	Search *SearchSettings `json:"search,omitempty"`
	List   *ListSettings   `json:"list,omitempty"`
}

// Validate checks the entity definition and applies defaults.
// defaultIndex and defaultFacetsLimit come from the process configuration.
func (e *EntityType) Validate(defaultIndex string) error {
	if e.Name == "" {
		return fmt.Errorf("entity name is required")
	}
	if e.Table == "" {
		return fmt.Errorf("entity %s: table is required", e.Name)
	}
	if e.PrimaryKey == "" {
		return fmt.Errorf("entity %s: primary_key is required", e.Name)
	}
	if e.Schema == "" {
		e.Schema = "public"
	}
	// filter_status and filter_fail_cause are response metadata keys on the
	// wire; a column of the same name would be clobbered in retrieve
	// responses.
	for _, c := range e.Columns {
		if c == "filter_status" || c == "filter_fail_cause" {
			return fmt.Errorf("entity %s: column %s collides with a reserved response key", e.Name, c)
		}
	}
	if e.List != nil && len(e.Columns) > 0 {
		for _, f := range e.List.FilterFields {
			if f != e.PrimaryKey && !contains(e.Columns, f) {
				return fmt.Errorf("entity %s: filter field %s is not a declared column", e.Name, f)
			}
		}
		for _, c := range e.List.SearchColumns {
			if !contains(e.Columns, c) {
				return fmt.Errorf("entity %s: search column %s is not a declared column", e.Name, c)
			}
		}
	}
	if e.Search != nil {
		if e.Search.Index == "" {
			e.Search.Index = defaultIndex
		}
		if len(e.Search.Fields) == 0 {
			return fmt.Errorf("entity %s: search.fields is required when search is enabled", e.Name)
		}
		if e.Search.FacetsLimit == 0 {
			e.Search.FacetsLimit = 10
		}
		for _, f := range e.Search.FacetsFields {
			if !contains(e.Search.Fields, f) {
				return fmt.Errorf("entity %s: facets field %s is not in search.fields", e.Name, f)
			}
		}
		for _, f := range e.Search.SuggestFields {
			if !contains(e.Search.Fields, f) {
				return fmt.Errorf("entity %s: suggest field %s is not in search.fields", e.Name, f)
			}
		}
		for _, f := range e.Search.CompletionFields {
			if !contains(e.Search.Fields, f) {
				return fmt.Errorf("entity %s: completion field %s is not in search.fields", e.Name, f)
			}
		}
	}
	return nil
}

// Indexable reports whether this entity type is opted into indexing.
func (e *EntityType) Indexable() bool {
	return e.Search != nil
}

// IndexName returns the search index this entity type lives in.
// Only meaningful for indexable entities.
func (e *EntityType) IndexName() string {
	if e.Search == nil {
		return ""
	}
	return e.Search.Index
}

// FullTableName returns schema.table
func (e *EntityType) FullTableName() string {
	return fmt.Sprintf("%s.%s", e.Schema, e.Table)
}

// Serialize converts a record's fields into an index document, restricted to
// the declared field allowlist. The primary key is always included.
func (e *EntityType) Serialize(fields map[string]any) map[string]any {
	doc := make(map[string]any, len(fields))
	if e.Search == nil {
		for k, v := range fields {
			doc[k] = v
		}
		return doc
	}
	for _, f := range e.Search.Fields {
		if v, ok := fields[f]; ok {
			doc[f] = v
		}
	}
	if v, ok := fields[e.PrimaryKey]; ok {
		doc[e.PrimaryKey] = v
	}
	return doc
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

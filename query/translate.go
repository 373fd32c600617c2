// Package query converts inbound request parameters into the structured
// specs consumed by the index manager and, in degraded mode, the database
// query path.
package query

import (
	"sort"
	"strconv"
	"strings"

	"searchlight/models"
	"searchlight/search"
)

// Reserved parameter names that are never treated as field filters.
const (
	OrderingParam = "ordering"
	PageParam     = "page"
	PageSizeParam = "page_size"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Translator resolves effective query parameters with the precedence
// request-level explicit parameters > handler-declared defaults >
// entity-type-declared defaults.
type Translator struct {
	// SearchParam is the process-wide default name of the free-text
	// parameter, used when neither the entity's list settings declare one.
	SearchParam string
}

// NewTranslator creates a translator with the process-wide search parameter
// name
func NewTranslator(searchParam string) *Translator {
	if searchParam == "" {
		searchParam = "q"
	}
	return &Translator{SearchParam: searchParam}
}

// Translate builds an immutable query spec from raw request parameters.
// Identical inputs always produce an identical spec: filters are sorted by
// field name. An absent or empty free-text term yields a match-all spec.
func (t *Translator) Translate(entity *models.EntityType, params map[string]string) search.Spec {
	spec := search.Spec{
		Term:     params[t.SearchParamName(entity)],
		Ordering: t.resolveOrdering(entity, params),
		Filters:  t.resolveFilters(entity, params),
		Page:     positiveInt(params[PageParam], 1),
		PageSize: t.resolvePageSize(entity, params),
	}
	return spec
}

// SearchParamName returns the effective free-text parameter name for an
// entity: the entity's list settings override the process-wide default.
func (t *Translator) SearchParamName(entity *models.EntityType) string {
	if entity.List != nil && entity.List.SearchParam != "" {
		return entity.List.SearchParam
	}
	return t.SearchParam
}

// resolveOrdering applies the ordering precedence chain and drops fields the
// entity does not declare, so arbitrary identifiers never reach a backend.
func (t *Translator) resolveOrdering(entity *models.EntityType, params map[string]string) []string {
	var ordering []string
	if raw := params[OrderingParam]; raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				ordering = append(ordering, f)
			}
		}
	}
	if len(ordering) == 0 && entity.List != nil {
		ordering = entity.List.DefaultOrdering
	}
	if len(ordering) == 0 && entity.Search != nil {
		ordering = entity.Search.DefaultOrdering
	}

	allowed := orderableFields(entity)
	resolved := make([]string, 0, len(ordering))
	for _, f := range ordering {
		if allowed[strings.TrimPrefix(f, "-")] {
			resolved = append(resolved, f)
		}
	}
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

// resolveFilters intersects request parameters with the handler's declared
// filterable-field allowlist. Parameters outside the allowlist are silently
// dropped: this is the boundary that keeps arbitrary fields out of backend
// queries.
func (t *Translator) resolveFilters(entity *models.EntityType, params map[string]string) []search.Filter {
	if entity.List == nil || len(entity.List.FilterFields) == 0 {
		return nil
	}

	var filters []search.Filter
	for _, field := range entity.List.FilterFields {
		if v, ok := params[field]; ok {
			filters = append(filters, search.Filter{Field: field, Value: v})
		}
	}
	sort.Slice(filters, func(i, j int) bool { return filters[i].Field < filters[j].Field })
	return filters
}

func (t *Translator) resolvePageSize(entity *models.EntityType, params map[string]string) int {
	fallback := defaultPageSize
	if entity.List != nil && entity.List.PageSize > 0 {
		fallback = entity.List.PageSize
	}
	size := positiveInt(params[PageSizeParam], fallback)
	if size > maxPageSize {
		size = maxPageSize
	}
	return size
}

func orderableFields(entity *models.EntityType) map[string]bool {
	allowed := make(map[string]bool)
	allowed[entity.PrimaryKey] = true
	for _, c := range entity.Columns {
		allowed[c] = true
	}
	if entity.Search != nil {
		for _, f := range entity.Search.Fields {
			allowed[f] = true
		}
	}
	return allowed
}

func positiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

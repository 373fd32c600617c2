package query

import (
	"reflect"
	"testing"

	"searchlight/models"
	"searchlight/search"
)

func testEntity() *models.EntityType {
	e := &models.EntityType{
		Name:       "products",
		Table:      "products",
		PrimaryKey: "id",
		Columns:    []string{"id", "name", "status", "created"},
		Search: &models.SearchSettings{
			Fields:          []string{"name", "status", "created"},
			DefaultOrdering: []string{"id"},
		},
		List: &models.ListSettings{
			FilterFields:    []string{"status"},
			DefaultOrdering: []string{"name"},
		},
	}
	if err := e.Validate("test"); err != nil {
		panic(err)
	}
	return e
}

func TestFilterAllowlist(t *testing.T) {
	tr := NewTranslator("q")
	entity := testEntity()

	spec := tr.Translate(entity, map[string]string{
		"status": "active",
		"secret": "1",
	})

	want := []search.Filter{{Field: "status", Value: "active"}}
	if !reflect.DeepEqual(spec.Filters, want) {
		t.Fatalf("expected filters %v, got %v", want, spec.Filters)
	}
}

func TestOrderingPrecedence(t *testing.T) {
	tr := NewTranslator("q")

	tests := []struct {
		name           string
		params         map[string]string
		handlerDefault []string
		entityDefault  []string
		want           []string
	}{
		{
			name:           "request wins",
			params:         map[string]string{"ordering": "-created"},
			handlerDefault: []string{"name"},
			entityDefault:  []string{"id"},
			want:           []string{"-created"},
		},
		{
			name:           "handler default when no request ordering",
			params:         map[string]string{},
			handlerDefault: []string{"name"},
			entityDefault:  []string{"id"},
			want:           []string{"name"},
		},
		{
			name:          "entity default when neither",
			params:        map[string]string{},
			entityDefault: []string{"id"},
			want:          []string{"id"},
		},
		{
			name:   "omitted when nothing resolves",
			params: map[string]string{},
			want:   nil,
		},
		{
			name:   "unknown fields dropped",
			params: map[string]string{"ordering": "-created,injected_col"},
			want:   []string{"-created"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity := testEntity()
			entity.List.DefaultOrdering = tt.handlerDefault
			entity.Search.DefaultOrdering = tt.entityDefault

			spec := tr.Translate(entity, tt.params)
			if !reflect.DeepEqual(spec.Ordering, tt.want) {
				t.Fatalf("expected ordering %v, got %v", tt.want, spec.Ordering)
			}
		})
	}
}

func TestEmptyTermIsMatchAll(t *testing.T) {
	tr := NewTranslator("q")
	entity := testEntity()

	spec := tr.Translate(entity, map[string]string{})
	if spec.Term != "" {
		t.Fatalf("expected empty term, got %q", spec.Term)
	}
	if spec.Page != 1 || spec.PageSize != 20 {
		t.Fatalf("expected default pagination, got page=%d size=%d", spec.Page, spec.PageSize)
	}
}

func TestSearchParamName(t *testing.T) {
	tr := NewTranslator("q")
	entity := testEntity()

	if got := tr.SearchParamName(entity); got != "q" {
		t.Fatalf("expected process-wide param name q, got %q", got)
	}

	entity.List.SearchParam = "term"
	if got := tr.SearchParamName(entity); got != "term" {
		t.Fatalf("expected entity param name term, got %q", got)
	}
}

func TestSearchParamPrecedence(t *testing.T) {
	tr := NewTranslator("q")
	entity := testEntity()
	entity.List.SearchParam = "term"

	spec := tr.Translate(entity, map[string]string{"term": "widget", "q": "ignored"})
	if spec.Term != "widget" {
		t.Fatalf("expected handler search param to win, got %q", spec.Term)
	}

	entity.List.SearchParam = ""
	spec = tr.Translate(entity, map[string]string{"q": "widget"})
	if spec.Term != "widget" {
		t.Fatalf("expected process-wide search param, got %q", spec.Term)
	}
}

func TestDeterministicSpec(t *testing.T) {
	tr := NewTranslator("q")
	entity := testEntity()
	entity.List.FilterFields = []string{"status", "name", "created"}

	params := map[string]string{
		"q":        "widget",
		"status":   "active",
		"name":     "blue",
		"created":  "2026",
		"ordering": "-created,name",
	}

	first := tr.Translate(entity, params)
	for range 50 {
		next := tr.Translate(entity, params)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("identical inputs produced different specs: %+v vs %+v", first, next)
		}
	}

	for i := 1; i < len(first.Filters); i++ {
		if first.Filters[i-1].Field > first.Filters[i].Field {
			t.Fatalf("filters not sorted: %v", first.Filters)
		}
	}
}

func TestPageSizeCapped(t *testing.T) {
	tr := NewTranslator("q")
	entity := testEntity()

	spec := tr.Translate(entity, map[string]string{"page_size": "5000"})
	if spec.PageSize != maxPageSize {
		t.Fatalf("expected page size capped at %d, got %d", maxPageSize, spec.PageSize)
	}

	spec = tr.Translate(entity, map[string]string{"page": "3", "page_size": "10"})
	if spec.Offset() != 20 {
		t.Fatalf("expected offset 20, got %d", spec.Offset())
	}
}

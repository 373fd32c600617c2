package models

import (
	"os"
	"path/filepath"
	"testing"
)

const entitiesJSON = `[
  {
    "name": "products",
    "table": "products",
    "primary_key": "id",
    "columns": ["id", "name", "status", "created"],
    "search": {
      "fields": ["name", "status", "created"],
      "facets_fields": ["status"],
      "suggest_fields": ["name"],
      "default_ordering": ["id"]
    },
    "list": {
      "filter_fields": ["status"],
      "default_ordering": ["name"],
      "search_columns": ["name"]
    }
  },
  {
    "name": "audit_log",
    "table": "audit_log",
    "schema": "internal",
    "primary_key": "entry_id"
  }
]`

func writeEntitiesFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entities.json")
	if err := os.WriteFile(path, []byte(entitiesJSON), 0644); err != nil {
		t.Fatalf("failed to write entities file: %v", err)
	}
	return path
}

func TestLoadRegistry(t *testing.T) {
	registry, err := LoadRegistry(writeEntitiesFile(t), "searchlight")
	if err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}

	products, ok := registry.Get("products")
	if !ok {
		t.Fatalf("products not registered")
	}
	if !products.Indexable() {
		t.Fatalf("products must be indexable")
	}
	if products.IndexName() != "searchlight" {
		t.Fatalf("expected default index name, got %q", products.IndexName())
	}
	if products.Search.FacetsLimit != 10 {
		t.Fatalf("expected default facets limit 10, got %d", products.Search.FacetsLimit)
	}
	if products.Schema != "public" {
		t.Fatalf("expected default schema public, got %q", products.Schema)
	}

	auditLog, ok := registry.Get("audit_log")
	if !ok {
		t.Fatalf("audit_log not registered")
	}
	if auditLog.Indexable() {
		t.Fatalf("audit_log must not be indexable")
	}
	if auditLog.FullTableName() != "internal.audit_log" {
		t.Fatalf("unexpected table name %q", auditLog.FullTableName())
	}

	indexable := registry.Indexable()
	if len(indexable) != 1 || indexable[0].Name != "products" {
		t.Fatalf("expected products as the only indexable entity, got %v", indexable)
	}
}

func TestValidateRejectsUnknownFacetField(t *testing.T) {
	e := &EntityType{
		Name:       "products",
		Table:      "products",
		PrimaryKey: "id",
		Search: &SearchSettings{
			Fields:       []string{"name"},
			FacetsFields: []string{"status"},
		},
	}
	if err := e.Validate("test"); err == nil {
		t.Fatalf("expected validation error for facet field outside allowlist")
	}
}

func TestValidateRejectsUnknownFilterField(t *testing.T) {
	e := &EntityType{
		Name:       "products",
		Table:      "products",
		PrimaryKey: "id",
		Columns:    []string{"id", "name"},
		List: &ListSettings{
			FilterFields: []string{"status"},
		},
	}
	if err := e.Validate("test"); err == nil {
		t.Fatalf("expected validation error for filter field outside declared columns")
	}
}

func TestValidateRejectsUnknownSearchColumn(t *testing.T) {
	e := &EntityType{
		Name:       "products",
		Table:      "products",
		PrimaryKey: "id",
		Columns:    []string{"id", "name"},
		List: &ListSettings{
			SearchColumns: []string{"description"},
		},
	}
	if err := e.Validate("test"); err == nil {
		t.Fatalf("expected validation error for search column outside declared columns")
	}
}

func TestValidateRejectsReservedColumnNames(t *testing.T) {
	for _, col := range []string{"filter_status", "filter_fail_cause"} {
		e := &EntityType{
			Name:       "products",
			Table:      "products",
			PrimaryKey: "id",
			Columns:    []string{"id", col},
		}
		if err := e.Validate("test"); err == nil {
			t.Fatalf("expected validation error for reserved column name %s", col)
		}
	}
}

func TestDuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	e := &EntityType{Name: "products", Table: "products", PrimaryKey: "id"}
	if err := registry.Register(e); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(e); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestSerializeRestrictsToAllowlist(t *testing.T) {
	e := &EntityType{
		Name:       "products",
		Table:      "products",
		PrimaryKey: "id",
		Search:     &SearchSettings{Fields: []string{"name"}},
	}
	if err := e.Validate("test"); err != nil {
		t.Fatal(err)
	}

	doc := e.Serialize(map[string]any{
		"id":     "1",
		"name":   "widget",
		"secret": "do not index",
	})
	if doc["name"] != "widget" || doc["id"] != "1" {
		t.Fatalf("expected allowlisted fields plus primary key, got %v", doc)
	}
	if _, ok := doc["secret"]; ok {
		t.Fatalf("field outside the allowlist reached the document: %v", doc)
	}
}

func TestIndexSourcedRecordFlag(t *testing.T) {
	e := &EntityType{Name: "products", Table: "products", PrimaryKey: "id"}
	if err := e.Validate("test"); err != nil {
		t.Fatal(err)
	}

	rec := NewRecord(e, "1", map[string]any{"id": "1"})
	if rec.FromIndex() {
		t.Fatalf("database record must not be flagged as index-sourced")
	}

	rec = RecordFromIndex(e, "1", map[string]any{"id": "1"})
	if !rec.FromIndex() {
		t.Fatalf("index record must be flagged as index-sourced")
	}
}

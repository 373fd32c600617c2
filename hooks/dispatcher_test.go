package hooks

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"searchlight/models"
	"searchlight/search"
)

// fakeBackend records calls and can be programmed to fail
type fakeBackend struct {
	indexed   []string
	deleted   []string
	ensured   []string
	indexErr  error
	ensureErr error
}

func (f *fakeBackend) EnsureIndex(e *models.EntityType) error {
	f.ensured = append(f.ensured, e.Name)
	return f.ensureErr
}

func (f *fakeBackend) RebuildIndex(e *models.EntityType) error { return nil }

func (f *fakeBackend) Index(e *models.EntityType, id string, doc map[string]any) error {
	f.indexed = append(f.indexed, e.Name+"/"+id)
	return f.indexErr
}

func (f *fakeBackend) Delete(e *models.EntityType, id string) error {
	f.deleted = append(f.deleted, e.Name+"/"+id)
	return nil
}

func (f *fakeBackend) Get(e *models.EntityType, id string) (map[string]any, error) {
	return nil, search.ErrNotFound
}

func (f *fakeBackend) Search(e *models.EntityType, spec search.Spec) (*search.Result, error) {
	return &search.Result{}, nil
}

func (f *fakeBackend) Complete(e *models.EntityType, prefix string, limit int) ([]string, error) {
	return nil, nil
}

func testRegistry(t *testing.T) (*models.Registry, *models.EntityType, *models.EntityType) {
	t.Helper()

	indexable := &models.EntityType{
		Name:       "products",
		Table:      "products",
		PrimaryKey: "id",
		Search:     &models.SearchSettings{Fields: []string{"name"}},
	}
	plain := &models.EntityType{
		Name:       "audit_log",
		Table:      "audit_log",
		PrimaryKey: "id",
	}
	for _, e := range []*models.EntityType{indexable, plain} {
		if err := e.Validate("test"); err != nil {
			t.Fatalf("invalid test entity: %v", err)
		}
	}

	registry := models.NewRegistry()
	if err := registry.Register(indexable); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(plain); err != nil {
		t.Fatal(err)
	}
	return registry, indexable, plain
}

func TestRecordSavedIndexesDocument(t *testing.T) {
	registry, indexable, _ := testRegistry(t)
	backend := &fakeBackend{}
	d := NewDispatcher(registry, backend, true, zap.NewNop())

	rec := models.NewRecord(indexable, "1", map[string]any{"id": "1", "name": "widget"})
	d.RecordSaved(context.Background(), rec)

	if len(backend.indexed) != 1 || backend.indexed[0] != "products/1" {
		t.Fatalf("expected one index write for products/1, got %v", backend.indexed)
	}
}

func TestDisabledDispatcherIsNoop(t *testing.T) {
	registry, indexable, _ := testRegistry(t)
	backend := &fakeBackend{}
	d := NewDispatcher(registry, backend, false, zap.NewNop())

	rec := models.NewRecord(indexable, "1", map[string]any{"id": "1", "name": "widget"})
	d.RecordSaved(context.Background(), rec)
	d.RecordDeleted(context.Background(), rec)

	if len(backend.indexed) != 0 || len(backend.deleted) != 0 {
		t.Fatalf("disabled dispatcher touched the backend: %v %v", backend.indexed, backend.deleted)
	}
}

func TestNonIndexableEntitySkipped(t *testing.T) {
	registry, _, plain := testRegistry(t)
	backend := &fakeBackend{}
	d := NewDispatcher(registry, backend, true, zap.NewNop())

	rec := models.NewRecord(plain, "1", map[string]any{"id": "1"})
	d.RecordSaved(context.Background(), rec)
	d.RecordDeleted(context.Background(), rec)

	if len(backend.indexed) != 0 || len(backend.deleted) != 0 {
		t.Fatalf("non-indexable entity reached the backend: %v %v", backend.indexed, backend.deleted)
	}
}

func TestIndexFailureIsBestEffort(t *testing.T) {
	registry, indexable, _ := testRegistry(t)
	backend := &fakeBackend{indexErr: search.ErrUnavailable}
	d := NewDispatcher(registry, backend, true, zap.NewNop())

	// Must not panic or propagate; the database mutation already happened.
	rec := models.NewRecord(indexable, "1", map[string]any{"id": "1", "name": "widget"})
	d.RecordSaved(context.Background(), rec)
}

func TestRecordDeletedRemovesDocument(t *testing.T) {
	registry, indexable, _ := testRegistry(t)
	backend := &fakeBackend{}
	d := NewDispatcher(registry, backend, true, zap.NewNop())

	rec := models.NewRecord(indexable, "1", map[string]any{"id": "1"})
	d.RecordDeleted(context.Background(), rec)

	if len(backend.deleted) != 1 || backend.deleted[0] != "products/1" {
		t.Fatalf("expected one index delete for products/1, got %v", backend.deleted)
	}
}

func TestMigrationCompleteEnsuresIndexableOnly(t *testing.T) {
	registry, _, _ := testRegistry(t)
	backend := &fakeBackend{}
	d := NewDispatcher(registry, backend, true, zap.NewNop())

	if err := d.MigrationComplete(context.Background()); err != nil {
		t.Fatalf("migration hook failed: %v", err)
	}
	if len(backend.ensured) != 1 || backend.ensured[0] != "products" {
		t.Fatalf("expected index creation for products only, got %v", backend.ensured)
	}
}

func TestMigrationCompleteSurfacesCreationError(t *testing.T) {
	registry, _, _ := testRegistry(t)
	backend := &fakeBackend{ensureErr: search.ErrIndexCreation}
	d := NewDispatcher(registry, backend, true, zap.NewNop())

	err := d.MigrationComplete(context.Background())
	if !errors.Is(err, search.ErrIndexCreation) {
		t.Fatalf("expected index creation error to surface, got %v", err)
	}
}

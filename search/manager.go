package search

import (
	"fmt"

	"searchlight/models"
)

// Manager is the per-entity-type index facade. It owns index lifecycle and
// single-document operations for one entity and builds backend queries from
// structured specs.
type Manager struct {
	backend Backend
	entity  *models.EntityType
}

// NewManager creates a manager for an indexable entity type
func NewManager(backend Backend, entity *models.EntityType) (*Manager, error) {
	if !entity.Indexable() {
		return nil, fmt.Errorf("entity %s is not indexable", entity.Name)
	}
	return &Manager{backend: backend, entity: entity}, nil
}

// Entity returns the entity type this manager serves
func (m *Manager) Entity() *models.EntityType {
	return m.entity
}

// CreateIndex idempotently creates the entity's index with its mapping
func (m *Manager) CreateIndex() error {
	return m.backend.EnsureIndex(m.entity)
}

// RebuildIndex drops and recreates the entity's index
func (m *Manager) RebuildIndex() error {
	return m.backend.RebuildIndex(m.entity)
}

// IndexRecord upserts one record's document, keyed by its primary identifier
func (m *Manager) IndexRecord(rec *models.Record) error {
	return m.backend.Index(m.entity, rec.ID, rec.Document())
}

// DeleteRecord removes one record's document. Idempotent.
func (m *Manager) DeleteRecord(id string) error {
	return m.backend.Delete(m.entity, id)
}

// Get fetches one record from the index. The returned record is flagged as
// index-sourced and must not be written back to the database.
func (m *Manager) Get(id string) (*models.Record, error) {
	doc, err := m.backend.Get(m.entity, id)
	if err != nil {
		return nil, err
	}
	return models.RecordFromIndex(m.entity, id, doc), nil
}

// Search executes a structured query
func (m *Manager) Search(spec Spec) (*Result, error) {
	return m.backend.Search(m.entity, spec)
}

// Complete returns completion-field values starting with prefix
func (m *Manager) Complete(prefix string, limit int) ([]string, error) {
	return m.backend.Complete(m.entity, prefix, limit)
}

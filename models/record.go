package models

import "fmt"

// Record is a single row of an entity type, keyed by its primary identifier.
// A record materialized from the search index instead of the database carries
// the fromIndex marker and must never be written back to the database.
type Record struct {
	Entity *EntityType
	ID     string
	Fields map[string]any

	fromIndex bool
}

// NewRecord creates a record backed by the authoritative store.
func NewRecord(entity *EntityType, id string, fields map[string]any) *Record {
	return &Record{Entity: entity, ID: id, Fields: fields}
}

// RecordFromIndex creates a record materialized from a search-index document.
// Such records are read-only with respect to the database.
func RecordFromIndex(entity *EntityType, id string, fields map[string]any) *Record {
	return &Record{Entity: entity, ID: id, Fields: fields, fromIndex: true}
}

// FromIndex reports whether this record was deserialized from the search
// index rather than the database.
func (r *Record) FromIndex() bool {
	return r.fromIndex
}

// Document serializes the record for indexing, applying the entity's field
// allowlist.
func (r *Record) Document() map[string]any {
	return r.Entity.Serialize(r.Fields)
}

func (r *Record) String() string {
	return fmt.Sprintf("%s/%s", r.Entity.Name, r.ID)
}

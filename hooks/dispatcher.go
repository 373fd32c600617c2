// Package hooks keeps the search index consistent with database mutations.
// The dispatcher is registered as the database store's observer at startup;
// there is no implicit event bus.
package hooks

import (
	"context"

	"go.uber.org/zap"

	"searchlight/models"
	"searchlight/search"
)

// Dispatcher reacts to authoritative-store lifecycle events. Index writes on
// save/delete are synchronous and best-effort: a failed index write is logged
// and never rolls back the database mutation. The two stores are eventually
// consistent only.
type Dispatcher struct {
	registry *models.Registry
	backend  search.Backend
	enabled  bool
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. When enabled is false (the default
// AUTO_INDEX setting) every hook is a no-op and the database mutation paths
// are unaffected.
func NewDispatcher(registry *models.Registry, backend search.Backend, enabled bool, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		backend:  backend,
		enabled:  enabled,
		logger:   logger,
	}
}

// Enabled reports whether auto-indexing is on
func (d *Dispatcher) Enabled() bool {
	return d.enabled
}

// RecordSaved upserts the record's index document after a database save.
// Entity types not opted into indexing are skipped.
func (d *Dispatcher) RecordSaved(_ context.Context, rec *models.Record) {
	if !d.enabled || !rec.Entity.Indexable() {
		return
	}

	if err := d.backend.Index(rec.Entity, rec.ID, rec.Document()); err != nil {
		d.logger.Warn("Failed to index record",
			zap.String("entity", rec.Entity.Name),
			zap.String("id", rec.ID),
			zap.Error(err))
	}
}

// RecordDeleted removes the record's index document after a database delete
func (d *Dispatcher) RecordDeleted(_ context.Context, rec *models.Record) {
	if !d.enabled || !rec.Entity.Indexable() {
		return
	}

	if err := d.backend.Delete(rec.Entity, rec.ID); err != nil {
		d.logger.Warn("Failed to delete record from index",
			zap.String("entity", rec.Entity.Name),
			zap.String("id", rec.ID),
			zap.Error(err))
	}
}

// MigrationComplete ensures every indexable entity type has its index
// created. Unlike the save/delete hooks this is not best-effort: a rejected
// mapping is returned to the caller, since a missing index silently breaks
// every subsequent search.
func (d *Dispatcher) MigrationComplete(_ context.Context) error {
	for _, entity := range d.registry.Indexable() {
		if err := d.backend.EnsureIndex(entity); err != nil {
			d.logger.Error("Index creation failed",
				zap.String("entity", entity.Name),
				zap.String("index", entity.IndexName()),
				zap.Error(err))
			return err
		}
		d.logger.Info("Index ready",
			zap.String("entity", entity.Name),
			zap.String("index", entity.IndexName()))
	}
	return nil
}

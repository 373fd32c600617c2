package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"searchlight/search"
)

const reindexBatchSize = 500

// ReindexEntity handles POST /entities/:entity/reindex
//
// Drops and recreates the entity's index, then repopulates it page by page
// from the database. This is the recovery path for an index that drifted or
// was lost on disk.
func ReindexEntity(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}
	if !entity.Indexable() {
		return BadRequest(c, ErrorCodeInvalidParameter, "entity "+entity.Name+" is not indexed")
	}

	mgr, err := search.NewManager(hc.Backend, entity)
	if err != nil {
		return InternalError(c, ErrorCodeInternalError, err.Error())
	}

	if err := mgr.RebuildIndex(); err != nil {
		return InternalError(c, ErrorCodeIndexSyncFailed, err.Error())
	}

	indexed := 0
	spec := search.Spec{
		Ordering: []string{entity.PrimaryKey},
		Page:     1,
		PageSize: reindexBatchSize,
	}
	for {
		qr, err := hc.Store.Query(c.Context(), entity, spec)
		if err != nil {
			return InternalError(c, ErrorCodeDatabaseError, err.Error())
		}
		for _, rec := range qr.Records {
			if err := mgr.IndexRecord(rec); err != nil {
				return InternalError(c, ErrorCodeIndexSyncFailed, err.Error())
			}
			indexed++
		}
		if len(qr.Records) < reindexBatchSize {
			break
		}
		spec.Page++
	}

	hc.Logger.Info("Reindexed entity",
		zap.String("entity", entity.Name),
		zap.Int("records", indexed))

	return c.JSON(fiber.Map{
		"indexed": indexed,
	})
}

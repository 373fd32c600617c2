package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// EntityInfo describes one registered entity type for API responses
type EntityInfo struct {
	Name      string `json:"name"`
	Table     string `json:"table"`
	Indexable bool   `json:"indexable"`
	Index     string `json:"index,omitempty"`
}

// ListEntities handles GET /entities
func ListEntities(c *fiber.Ctx) error {
	hc := GetContext(c)

	entities := hc.Registry.All()
	infos := make([]EntityInfo, 0, len(entities))
	for _, e := range entities {
		infos = append(infos, EntityInfo{
			Name:      e.Name,
			Table:     e.FullTableName(),
			Indexable: e.Indexable(),
			Index:     e.IndexName(),
		})
	}

	return c.JSON(infos)
}

// SyncIndexes handles POST /admin/sync-indexes. It runs the same
// migration-complete hook the sync-indexes CLI command does.
func SyncIndexes(c *fiber.Ctx) error {
	hc := GetContext(c)

	if err := hc.Dispatcher.MigrationComplete(c.Context()); err != nil {
		return InternalError(c, ErrorCodeIndexSyncFailed, err.Error())
	}

	return c.JSON(fiber.Map{
		"synced": len(hc.Registry.Indexable()),
	})
}

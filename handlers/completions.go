package handlers

import (
	"github.com/gofiber/fiber/v2"

	"searchlight/search"
)

// CompleteRecords handles GET /entities/:entity/completions
//
// Completion is an index-only feature; there is no database fallback. When
// the backend is down the endpoint reports unavailable instead of degrading.
func CompleteRecords(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}
	if !entity.Indexable() {
		return BadRequest(c, ErrorCodeInvalidParameter, "entity "+entity.Name+" is not indexed")
	}

	prefix := c.Query(hc.Translator.SearchParamName(entity))
	if prefix == "" {
		return BadRequest(c, ErrorCodeInvalidParameter, "missing completion prefix")
	}
	limit := c.QueryInt("limit", 10)

	mgr, err := search.NewManager(hc.Backend, entity)
	if err != nil {
		return InternalError(c, ErrorCodeInternalError, err.Error())
	}

	completions, err := mgr.Complete(prefix, limit)
	if err != nil {
		if search.IsUnavailable(err) {
			return ServiceUnavailable(c, ErrorCodeBackendUnavailable, "search backend unavailable")
		}
		return InternalError(c, ErrorCodeInternalError, err.Error())
	}

	return c.JSON(fiber.Map{
		"completions": completions,
	})
}

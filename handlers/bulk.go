package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"searchlight/formats"
	"searchlight/models"
)

// BulkLoadRecords handles POST /entities/:entity/records/bulk
//
// Records are saved through the regular database write path, so the
// lifecycle hooks index each one when auto-indexing is enabled.
func BulkLoadRecords(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}

	format := c.Query("format", "jsoneachrow")
	parser, err := formats.GetParser(format)
	if err != nil {
		if errors.Is(err, formats.ErrUnsupportedFormat) {
			return BadRequest(c, ErrorCodeUnsupportedFormat, "unsupported format "+format)
		}
		return InternalError(c, ErrorCodeInternalError, err.Error())
	}

	records, err := parser.Parse(c.Body())
	if err != nil {
		return BadRequestWithDetails(c, ErrorCodeInvalidRequestBody, "failed to parse payload", err.Error())
	}

	loaded := 0
	for _, fields := range records {
		id, err := recordID(entity, fields)
		if err != nil {
			return InternalError(c, ErrorCodeUUIDGenerationFailed, err.Error())
		}
		rec := models.NewRecord(entity, id, fields)
		if err := hc.Store.Save(c.Context(), rec); err != nil {
			return saveError(c, err)
		}
		loaded++
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"loaded": loaded,
	})
}

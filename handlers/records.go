package handlers

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"searchlight/db"
	"searchlight/models"
)

// CreateRecord handles POST /entities/:entity/records
func CreateRecord(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}

	var fields map[string]any
	if err := sonic.Unmarshal(c.Body(), &fields); err != nil {
		return BadRequestWithDetails(c, ErrorCodeInvalidRequestBody, "invalid JSON body", err.Error())
	}
	if len(fields) == 0 {
		return BadRequest(c, ErrorCodeInvalidRequestBody, "empty record")
	}

	id, err := recordID(entity, fields)
	if err != nil {
		return InternalError(c, ErrorCodeUUIDGenerationFailed, err.Error())
	}

	rec := models.NewRecord(entity, id, fields)
	if err := hc.Store.Save(c.Context(), rec); err != nil {
		return saveError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rec.Fields)
}

// UpdateRecord handles PATCH /entities/:entity/records/:id
//
// The existing row is always read from the database, never from the index,
// so the merged record is safe to write back. The merge is shallow: each
// body field overwrites the stored field of the same name.
func UpdateRecord(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}
	id := c.Params("id")

	var updates map[string]any
	if err := sonic.Unmarshal(c.Body(), &updates); err != nil {
		return BadRequestWithDetails(c, ErrorCodeInvalidRequestBody, "invalid JSON body", err.Error())
	}

	rec, err := hc.Store.Get(c.Context(), entity, id)
	if err != nil {
		if db.IsNotFound(err) {
			return NotFound(c, ErrorCodeRecordNotFound, "record "+id+" not found")
		}
		return InternalError(c, ErrorCodeDatabaseError, err.Error())
	}

	for k, v := range updates {
		if k == entity.PrimaryKey {
			continue
		}
		rec.Fields[k] = v
	}

	if err := hc.Store.Save(c.Context(), rec); err != nil {
		return saveError(c, err)
	}

	return c.JSON(rec.Fields)
}

// DeleteRecord handles DELETE /entities/:entity/records/:id
func DeleteRecord(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}
	id := c.Params("id")

	rec := models.NewRecord(entity, id, map[string]any{entity.PrimaryKey: id})
	if err := hc.Store.Delete(c.Context(), rec); err != nil {
		if db.IsNotFound(err) {
			return NotFound(c, ErrorCodeRecordNotFound, "record "+id+" not found")
		}
		return saveError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// recordID returns the record's primary key value, generating a UUIDv7 when
// the payload does not carry one.
func recordID(entity *models.EntityType, fields map[string]any) (string, error) {
	if id, ok := fields[entity.PrimaryKey]; ok && id != nil {
		return fmt.Sprintf("%v", id), nil
	}
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	fields[entity.PrimaryKey] = uuidV7.String()
	return uuidV7.String(), nil
}

func saveError(c *fiber.Ctx, err error) error {
	if errors.Is(err, db.ErrUnsafeWriteBack) {
		return InternalError(c, ErrorCodeUnsafeWriteBack, err.Error())
	}
	if errors.Is(err, db.ErrUnknownColumn) {
		return BadRequestWithDetails(c, ErrorCodeInvalidRequestBody, "unknown field in record", err.Error())
	}
	return InternalError(c, ErrorCodeDatabaseError, err.Error())
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"searchlight/db"
	"searchlight/models"
	"searchlight/search"
)

// ListRecords handles GET /entities/:entity/records
//
// The search backend is the primary data source for indexable entities; a
// connectivity failure mid-search re-executes the query against the database
// and marks the response degraded. Entities without search settings are
// served from the database directly and are never degraded.
func ListRecords(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}

	spec := hc.Translator.Translate(entity, c.Queries())
	orch := NewOrchestrator(hc.Config.Debug, hc.Logger)

	var env *Envelope

	fromDatabase := func() error {
		qr, err := hc.Store.Query(c.Context(), entity, spec)
		if err != nil {
			return err
		}
		env = envelopeFromQueryResult(qr, spec)
		return nil
	}

	if entity.Indexable() {
		fromIndex := func() error {
			mgr, err := search.NewManager(hc.Backend, entity)
			if err != nil {
				return err
			}
			res, err := mgr.Search(spec)
			if err != nil {
				return err
			}
			env = envelopeFromResult(res, spec)
			return nil
		}
		err = orch.Run(fromIndex, fromDatabase)
	} else {
		err = fromDatabase()
	}

	if err != nil {
		if errors.Is(err, search.ErrQueryRejected) {
			return BadRequestWithDetails(c, ErrorCodeQueryRejected, "invalid search query", err.Error())
		}
		return InternalError(c, ErrorCodeDatabaseError, err.Error())
	}

	orch.Annotate(env)
	return c.JSON(env)
}

// RetrieveRecord handles GET /entities/:entity/records/:id
//
// A document missing from the index is a not-found response, not a fallback
// trigger; only backend-unavailable switches the lookup to the database.
func RetrieveRecord(c *fiber.Ctx) error {
	hc := GetContext(c)
	entity, err := entityFromPath(c)
	if entity == nil {
		return err
	}
	id := c.Params("id")

	orch := NewOrchestrator(hc.Config.Debug, hc.Logger)

	var rec *models.Record

	fromDatabase := func() error {
		r, err := hc.Store.Get(c.Context(), entity, id)
		if err != nil {
			return err
		}
		rec = r
		return nil
	}

	if entity.Indexable() {
		fromIndex := func() error {
			mgr, err := search.NewManager(hc.Backend, entity)
			if err != nil {
				return err
			}
			r, err := mgr.Get(id)
			if err != nil {
				return err
			}
			rec = r
			return nil
		}
		err = orch.Run(fromIndex, fromDatabase)
	} else {
		err = fromDatabase()
	}

	if err != nil {
		if errors.Is(err, search.ErrNotFound) || db.IsNotFound(err) {
			return NotFound(c, ErrorCodeRecordNotFound, "record "+id+" not found")
		}
		return InternalError(c, ErrorCodeDatabaseError, err.Error())
	}

	body := make(map[string]any, len(rec.Fields)+1)
	for k, v := range rec.Fields {
		body[k] = v
	}
	orch.AnnotateMap(body)
	return c.JSON(body)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"searchlight/config"
	"searchlight/db"
	"searchlight/hooks"
	"searchlight/models"
	"searchlight/query"
	"searchlight/search"
)

// HandlerContext holds dependencies needed by handlers
type HandlerContext struct {
	Config     *config.Config
	Registry   *models.Registry
	Backend    search.Backend
	Store      *db.Store
	Dispatcher *hooks.Dispatcher
	Translator *query.Translator
	Logger     *zap.Logger
}

const contextKey = "handler_context"

// SetContext stores the HandlerContext in the Fiber context
func SetContext(c *fiber.Ctx, ctx *HandlerContext) {
	c.Locals(contextKey, ctx)
}

// GetContext retrieves the HandlerContext from the Fiber context
func GetContext(c *fiber.Ctx) *HandlerContext {
	return c.Locals(contextKey).(*HandlerContext)
}

// entityFromPath resolves the :entity path parameter against the registry
func entityFromPath(c *fiber.Ctx) (*models.EntityType, error) {
	hc := GetContext(c)
	entity, ok := hc.Registry.Get(c.Params("entity"))
	if !ok {
		return nil, NotFound(c, ErrorCodeEntityNotFound, "unknown entity type "+c.Params("entity"))
	}
	return entity, nil
}

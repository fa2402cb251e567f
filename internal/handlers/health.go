package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/roly/internal/models"
	"github.com/soltixdb/roly/internal/utils"
)

// Health reports the service status and the number of cached datasets.
// With ?deep=true it also lists the catalog root and reports 503 when the
// metadata store cannot be read.
func (h *Handler) Health(c *fiber.Ctx) error {
	stats := h.datasetService.Stats()
	resp := models.HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Version:        h.version,
		CatalogRoot:    stats.Root,
		CachedDatasets: stats.Entries,
	}
	if !c.QueryBool("deep") {
		return c.JSON(resp)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), utils.HealthCheckTimeout)
	defer cancel()
	list, err := h.datasetService.List(ctx)
	if err != nil {
		h.logger.Warn("Deep health check failed", "root", stats.Root, "error", err)
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	resp.Datasets = &list.Count
	return c.JSON(resp)
}

// NotFound answers requests no route matched
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "no route for " + c.Method() + " " + c.Path(),
			Path:    c.Path(),
		},
	})
}

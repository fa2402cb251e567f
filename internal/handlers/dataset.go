package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/models"
	"github.com/soltixdb/roly/internal/utils"
)

// ListDatasets lists the datasets of the catalog
func (h *Handler) ListDatasets(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), utils.DefaultRequestTimeout)
	defer cancel()

	resp, err := h.datasetService.List(ctx)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// GetDataset describes one dataset
func (h *Handler) GetDataset(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), utils.DefaultRequestTimeout)
	defer cancel()

	resp, err := h.datasetService.Describe(ctx, c.Params("dataset"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// ReadColumn returns the values of a column over ?start=&stop=, or their
// statistics with ?summary=true
func (h *Handler) ReadColumn(c *fiber.Ctx) error {
	req, err := parseRange(c)
	if err != nil {
		return badRequest(c, "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), utils.ColumnReadTimeout)
	defer cancel()

	resp, err := h.datasetService.ReadColumn(ctx, c.Params("dataset"), c.Params("column"), req)
	if err != nil {
		return h.respondError(c, err)
	}

	logging.FromContext(c.UserContext()).Debug("Column read",
		"dataset", resp.Dataset,
		"column", resp.Column,
		"count", resp.Count,
		"baskets", resp.Baskets,
		"duration", resp.Duration)
	return c.JSON(resp)
}

// InvalidateDataset drops a cached dataset on every replica
func (h *Handler) InvalidateDataset(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), utils.DefaultRequestTimeout)
	defer cancel()

	resp, err := h.datasetService.Invalidate(ctx, c.Params("dataset"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// CatalogStats reports dataset cache statistics
func (h *Handler) CatalogStats(c *fiber.Ctx) error {
	return c.JSON(h.datasetService.Stats())
}

func parseRange(c *fiber.Ctx) (models.ColumnRangeRequest, error) {
	var req models.ColumnRangeRequest
	for _, p := range []struct {
		name string
		dst  **int64
	}{{"start", &req.Start}, {"stop", &req.Stop}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "invalid "+p.name+": "+raw)
		}
		*p.dst = &v
	}
	if raw := c.Query("summary"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "invalid summary: "+raw)
		}
		req.Summary = v
	}
	return req, nil
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/models"
	"github.com/soltixdb/roly/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger         *logging.Logger
	datasetService *services.DatasetService
	version        string
}

// New creates a new handler instance
func New(logger *logging.Logger, datasetService *services.DatasetService, version string) *Handler {
	return &Handler{
		logger:         logger,
		datasetService: datasetService,
		version:        version,
	}
}

// statusFor maps service error codes to HTTP status codes
var statusFor = map[string]int{
	services.CodeDatasetNotFound:         fiber.StatusNotFound,
	services.CodeColumnNotFound:          fiber.StatusNotFound,
	services.CodeInvalidName:             fiber.StatusBadRequest,
	services.CodeInvalidRange:            fiber.StatusBadRequest,
	services.CodeRangeTooLarge:           fiber.StatusRequestEntityTooLarge,
	services.CodeNotNumeric:              fiber.StatusBadRequest,
	services.CodeCorruptBasket:           fiber.StatusUnprocessableEntity,
	services.CodeInconsistentCompression: fiber.StatusUnprocessableEntity,
	services.CodeMissingBranchData:       fiber.StatusUnprocessableEntity,
	services.CodeUnsupportedCompression:  fiber.StatusUnprocessableEntity,
	services.CodeUnknownQualname:         fiber.StatusUnprocessableEntity,
	services.CodeInvalidLayout:           fiber.StatusUnprocessableEntity,
	services.CodeDataFileNotFound:        fiber.StatusBadGateway,
	services.CodeEventsUnavailable:       fiber.StatusServiceUnavailable,
	services.CodeTimeout:                 fiber.StatusGatewayTimeout,
}

// respondError writes err as an error response
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	svcErr, ok := err.(*services.ServiceError)
	if !ok {
		return err
	}
	status, ok := statusFor[svcErr.Code]
	if !ok {
		status = fiber.StatusInternalServerError
		h.logger.Error("Request failed",
			"path", c.Path(),
			"code", svcErr.Code,
			"error", svcErr.Message)
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Path:    c.Path(),
		},
	})
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/raddispatch/distengine/internal/entity"
	"github.com/raddispatch/distengine/internal/repository"
	"github.com/raddispatch/distengine/internal/service"
	"github.com/raddispatch/distengine/internal/validation"
)

// Handlers contains all HTTP request handlers.
type Handlers struct {
	distribution *service.DistributionService
	db           repository.Database
}

// NewHandlers builds the Handlers for a DistributionService and the
// backing database (used only for the /api/health/db check).
func NewHandlers(distribution *service.DistributionService, db repository.Database) *Handlers {
	return &Handlers{distribution: distribution, db: db}
}

// Distribute runs one distribution cycle and returns its Result
// Envelope (spec §4.8).
func (h *Handlers) Distribute(c echo.Context) error {
	envelope, err := h.distribution.Distribute(c.Request().Context(), "http")
	var persistErr *entity.PersistenceFailureError
	if err != nil && !errors.As(err, &persistErr) {
		return respondRunError(c, err)
	}
	status := http.StatusOK
	if envelope.Degraded {
		status = http.StatusMultiStatus
	}
	return SuccessResponse(c, status, envelope)
}

// PreviewDistribute reports the size of the pending snapshot without
// committing anything (SPEC_FULL §12's dual-verb endpoint).
func (h *Handlers) PreviewDistribute(c echo.Context) error {
	preview, err := h.distribution.Preview(c.Request().Context())
	if err != nil {
		return respondRunError(c, err)
	}
	return SuccessResponse(c, http.StatusOK, preview)
}

func respondRunError(c echo.Context, err error) error {
	switch e := err.(type) {
	case *entity.SnapshotUnavailableError:
		return ErrorResponseWithCode(c, http.StatusServiceUnavailable, validation.CodeSnapshotUnavailable, e.Error())
	case *entity.InvariantViolationError:
		return ErrorResponseWithCode(c, http.StatusInternalServerError, validation.CodeInvariantViolation, e.Error())
	case *entity.PersistenceFailureError:
		return ErrorResponseWithCode(c, http.StatusInternalServerError, validation.CodePersistenceFailure, e.Error())
	default:
		if err.Error() == "distribution run already in progress" {
			return ErrorResponseWithCode(c, http.StatusConflict, validation.CodeInvariantViolation, err.Error())
		}
		return ErrorResponse(c, http.StatusInternalServerError, fmt.Sprintf("distribution run failed: %v", err))
	}
}

// Health returns the liveness status.
func (h *Handlers) Health(c echo.Context) error {
	return SuccessResponse(c, http.StatusOK, map[string]interface{}{"status": "UP"})
}

// HealthDB checks database connectivity.
func (h *Handlers) HealthDB(c echo.Context) error {
	if h.db == nil {
		return SuccessResponse(c, http.StatusOK, map[string]interface{}{"database": "not configured"})
	}
	if err := h.db.Health(c.Request().Context()); err != nil {
		return ErrorResponse(c, http.StatusServiceUnavailable, fmt.Sprintf("database unhealthy: %v", err))
	}
	return SuccessResponse(c, http.StatusOK, map[string]interface{}{"database": "UP"})
}

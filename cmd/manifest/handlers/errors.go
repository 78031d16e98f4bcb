package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/resiflow/manifest/cmd/manifest/models"
)

// httpError maps service errors to HTTP responses. Unrecognized errors
// become a generic 500 so internals never leak to callers.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrTemplateNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrMissingRequiredFields):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotCurrentVersion),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrDuplicateSequence):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrProtectedRecord):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrEmptyArtifact),
		errors.Is(err, models.ErrRenderError):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

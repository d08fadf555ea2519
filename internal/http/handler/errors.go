package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/QuackbackIO/quackback-sub007/internal/service"
)

// respondError maps service sentinels to status codes. Anything unrecognized is
// logged and reported as a generic 500.
func respondError(ctx context.Context, c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSourceNotFound),
		errors.Is(err, service.ErrRawItemNotFound),
		errors.Is(err, service.ErrSuggestionNotFound),
		errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSourceDisabled),
		errors.Is(err, service.ErrSuggestionResolved),
		errors.Is(err, service.ErrNotResubmittable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, "failed to "+action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	}
}

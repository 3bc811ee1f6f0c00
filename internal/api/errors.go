package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
)

var statusByCode = map[models.ErrorCode]int{
	models.CodeValidation:   http.StatusBadRequest,
	models.CodeNotFound:     http.StatusNotFound,
	models.CodeConflict:     http.StatusConflict,
	models.CodeInUse:        http.StatusConflict,
	models.CodeUnauthorized: http.StatusUnauthorized,
	models.CodeForbidden:    http.StatusForbidden,
}

// respondError writes a typed error as JSON. Anything untyped is a 500 and
// its detail stays in the log.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var e *models.Error
	if errors.As(err, &e) {
		status, ok := statusByCode[e.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": e})
		return
	}

	log.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": "INTERNAL", "message": "internal server error"},
	})
}

func badRequest(c *gin.Context, field, reason string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": models.NewValidationError(field, reason)})
}

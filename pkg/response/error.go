package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cornerstone-fellowship/backend/internal/apperr"
)

// Error maps a fault from the taxonomy to its HTTP status and envelope.
// Unrecognized errors become an opaque 500.
func Error(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, Body{Success: false, Error: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Reason {
	case apperr.REASON_MISSING_FIELD, apperr.REASON_INVALID_CODE, apperr.REASON_INVALID_TOKEN:
		status = http.StatusBadRequest
	case apperr.REASON_UNAUTHORIZED:
		status = http.StatusUnauthorized
	case apperr.REASON_NOT_FOUND:
		status = http.StatusNotFound
	case apperr.REASON_STORE_UNAVAILABLE, apperr.REASON_DELIVERY_FAILED:
		status = http.StatusInternalServerError
	}

	c.JSON(status, Body{Success: false, Error: appErr.Message, Code: string(appErr.Reason)})
}

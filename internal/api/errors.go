package api

import (
	"errors"
	"net/http"

	"github.com/bizsuite/bizsuite/internal/logging"
	"github.com/bizsuite/bizsuite/internal/models"
	"github.com/bizsuite/bizsuite/internal/services"
	"github.com/gin-gonic/gin"
)

// MsgContactNotFound is the fixed message of every contact 404
const MsgContactNotFound = "Contact not found"

// respondError converts a service error into the response envelope.
// Unexpected errors are logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrContactNotFound):
		c.JSON(http.StatusNotFound, models.FailMessage(MsgContactNotFound))
	default:
		_ = c.Error(err)
		logging.LogKV("error", "request failed", map[string]interface{}{
			"path":            c.FullPath(),
			"organization_id": c.GetString(ContextOrganizationID),
			"error":           err,
		})
		c.JSON(http.StatusInternalServerError, models.Fail(models.ErrorCodeInternal, "Internal server error"))
	}
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.Fail(models.ErrorCodeValidation, err.Error()))
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/basexlabs/basex-oracle/integration/pkg/api/middleware"
	"github.com/basexlabs/basex-oracle/protocol"
)

const internalErrorMessage = "Internal server error"

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// statusFor maps an error kind to the HTTP status returned to the caller.
func statusFor(err error) int {
	switch {
	case errors.Is(err, protocol.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, protocol.ErrVideoNotFound):
		return http.StatusNotFound
	case errors.Is(err, protocol.ErrUpstreamAPI):
		return http.StatusBadGateway
	case errors.Is(err, protocol.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes err with the status of its kind. Unclassified errors are logged and hidden.
func (a *API) respondErr(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.lggr.Errorw("Request failed", "requestID", middleware.RequestIDFrom(c), "path", c.Request.URL.Path, "error", err)
		respondError(c, status, internalErrorMessage)
		return
	}
	a.lggr.Warnw("Request failed", "requestID", middleware.RequestIDFrom(c), "path", c.Request.URL.Path, "status", status, "error", err)
	respondError(c, status, err.Error())
}

// Package apierror maps the service layer's tagged error sum onto the
// JSON error envelope described in the external interfaces contract
// (spec §6/§7), shared by both the handler and middleware packages so
// neither has to depend on the other just to report an error the same
// way.
package apierror

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shortlinkhq/shortlink/internal/service"
)

var statusByCode = map[service.ErrorCode]int{
	service.ErrValidation:   http.StatusBadRequest,
	service.ErrBadRequest:   http.StatusBadRequest,
	service.ErrUnauthorized: http.StatusUnauthorized,
	service.ErrNotFound:     http.StatusNotFound,
	service.ErrConflict:     http.StatusConflict,
	service.ErrGone:         http.StatusGone,
	service.ErrInternal:     http.StatusInternalServerError,
}

type envelope struct {
	Error envelopeBody `json:"error"`
}

type envelopeBody struct {
	Code    service.ErrorCode `json:"code"`
	Message string            `json:"message"`
	Details map[string]any    `json:"details,omitempty"`
}

// Respond writes err as the standard error envelope and aborts the gin
// context. Errors that aren't a *service.Error are treated as internal
// and their details are never echoed back to the client.
func Respond(c *gin.Context, err error) {
	svcErr, ok := service.AsServiceError(err)
	if !ok {
		svcErr = service.InternalError("internal error", nil)
	}

	status, ok := statusByCode[svcErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	details := svcErr.Details
	if svcErr.Code == service.ErrInternal {
		details = nil
	}

	c.AbortWithStatusJSON(status, envelope{Error: envelopeBody{
		Code:    svcErr.Code,
		Message: svcErr.Message,
		Details: details,
	}})
}

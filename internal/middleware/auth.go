package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shortlinkhq/shortlink/internal/apierror"
	"github.com/shortlinkhq/shortlink/internal/service"
)

// BearerAuth enforces the admin/write API's bearer-token requirement
// (spec §4.7/§6). The redirect path never runs this middleware — only
// the management endpoints require a token.
func BearerAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			apierror.Respond(c, service.UnauthorizedError("missing bearer token"))
			return
		}

		record, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		c.Set("api_token", record)
		c.Next()
	}
}

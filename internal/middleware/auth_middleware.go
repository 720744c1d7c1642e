package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"tabl/internal/identity"
	"tabl/internal/utils"
	"tabl/pkg/logger"
)

// AuthRequired verifies the Firebase ID token and puts the principal on the request context.
// Websocket clients that cannot set headers may pass the token as ?access_token=.
func AuthRequired(verifier identity.TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("access_token")

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.UnauthorizedResponse(c, "Bearer token required")
				c.Abort()
				return
			}
		}

		if tokenString == "" {
			utils.UnauthorizedResponse(c, "Authorization header required")
			c.Abort()
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			log.WithContext(c.Request.Context()).WithError(err).Debug("Rejected token")
			utils.UnauthorizedResponse(c, utils.ErrInvalidToken)
			c.Abort()
			return
		}

		ctx := identity.WithPrincipal(c.Request.Context(), principal)
		ctx = context.WithValue(ctx, logger.UserIDKey, principal.UID)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", principal.UID)
		c.Set("email", principal.Email)

		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired(policy identity.AdminPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := identity.FromContext(c.Request.Context())
		if !ok {
			utils.UnauthorizedResponse(c, utils.ErrUnauthorized)
			c.Abort()
			return
		}

		if !policy.IsAdmin(principal) {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

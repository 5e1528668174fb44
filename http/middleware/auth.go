package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plumstack/ostack-console/apperror"
	"github.com/plumstack/ostack-console/config"
	"github.com/plumstack/ostack-console/utils"
)

// AuthMiddleware validates the session token and places the wrapped
// OpenStack token into the gin context for the controllers.
func AuthMiddleware(config *config.EnvConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := utils.ExtractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error_type": string(apperror.ReasonTokenMissing),
				"message":    "authorization token is required",
			})
			return
		}

		claims, err := utils.ParseSessionToken(tokenStr, config)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error_type": string(apperror.ReasonTokenInvalid),
				"message":    "invalid or expired token",
			})
			return
		}

		utils.InjectClaimsToContext(c, claims)
		c.Next()
	}
}

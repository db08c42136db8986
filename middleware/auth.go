package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viewingdesk/utils"
)

// LookupTokenMiddleware requires a bearer token issued by a successful lookup and
// stores its record id under "tokenRecordID" for the handler to match against the body.
func LookupTokenMiddleware(issuer *utils.LookupTokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		recordID, err := issuer.ExtractRecordID(tokenString)
		if err != nil {
			zap.L().Debug("rejected lookup token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		c.Set("tokenRecordID", recordID)
		c.Next()
	}
}

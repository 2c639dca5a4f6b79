package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stepwise/pkg/utils"
)

const (
	SessionCookie  = "stepwise_session"
	accountIDKey   = "account_id"
	PortalTokenHdr = "X-Portal-Token"
)

// JWTAuthMiddleware accepts a session token from the Authorization header or the session
// cookie and stores the account id on the context.
func JWTAuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(tokenString, utils.AudienceSession)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}
		accountID, err := uuid.Parse(claims.UserID)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

// AccountID returns the authenticated account, or uuid.Nil outside JWTAuthMiddleware.
func AccountID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(accountIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// PortalToken reads a portal unlock token from its header or a bearer Authorization header.
func PortalToken(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(PortalTokenHdr)); t != "" {
		return t
	}
	return bearerToken(c)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

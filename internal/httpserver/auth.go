package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

const userCtxKey = "storefront.user"

// authMiddleware validates the bearer token and stores the resolved user
// plus the raw token on the request context.
func authMiddleware(accounts AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			respondMessage(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}
		u, err := accounts.LookupByToken(c.Request.Context(), token)
		if err != nil {
			respondMessage(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}
		c.Set(userCtxKey, u)
		c.Set(tokenCtxKey, token)
		c.Next()
	}
}

const tokenCtxKey = "storefront.token"

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func currentToken(c *gin.Context) string {
	v, ok := c.Get(tokenCtxKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

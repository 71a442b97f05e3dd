package auth

import (
	"net/http"
	"strings"

	"storefront-service/internal/apperr"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the session cookie carrying the token.
	CookieName = "auth_token"

	sellerIDKey = "sellerID"
)

// Cookies writes and clears the session cookie.
type Cookies struct {
	Secure bool
	MaxAge int
}

// Set stores token in an HttpOnly, SameSite=None cookie.
func (ck Cookies) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(CookieName, token, ck.MaxAge, "/", "", ck.Secure, true)
}

// Clear expires the session cookie.
func (ck Cookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(CookieName, "", -1, "/", "", ck.Secure, true)
}

// RequireSeller rejects requests without a valid session with 401. The
// token is read from the session cookie, falling back to a Bearer header.
func RequireSeller(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c)
		if raw == "" {
			c.Error(apperr.Unauthorized("Not authorized, no token"))
			c.Abort()
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.Error(apperr.Wrap(http.StatusUnauthorized, "Not authorized, invalid token", err))
			c.Abort()
			return
		}

		c.Set(sellerIDKey, claims.SellerID)
		c.Next()
	}
}

// SellerID returns the seller authenticated by RequireSeller.
func SellerID(c *gin.Context) int64 {
	return c.GetInt64(sellerIDKey)
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

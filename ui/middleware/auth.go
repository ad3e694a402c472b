package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultUserID is the user every request runs as in single-user mode
const DefaultUserID = "550e8400-e29b-41d4-a716-446655440000"

// UserIDKey is the gin context key holding the admitted user
const UserIDKey = "userID"

// SessionResolver decides whether a presented credential admits the caller
type SessionResolver interface {
	// Resolve returns the user a credential belongs to
	Resolve(credential string) (userID string, ok bool)
	// RequiresCredential reports whether a login form must be shown
	RequiresCredential() bool
}

// SingleUser admits everyone as the default user
type SingleUser struct{}

func (SingleUser) Resolve(string) (string, bool) { return DefaultUserID, true }

func (SingleUser) RequiresCredential() bool { return false }

// SharedToken admits callers presenting one configured token
type SharedToken struct {
	token []byte
}

func NewSharedToken(token string) *SharedToken {
	return &SharedToken{token: []byte(token)}
}

func (g *SharedToken) Resolve(credential string) (string, bool) {
	if credential == "" || subtle.ConstantTimeCompare([]byte(credential), g.token) != 1 {
		return "", false
	}
	return DefaultUserID, true
}

func (g *SharedToken) RequiresCredential() bool { return true }

// NewSessionResolver picks SharedToken when token is set, otherwise SingleUser
func NewSessionResolver(token string) SessionResolver {
	if token == "" {
		return SingleUser{}
	}
	return NewSharedToken(token)
}

// Credential returns the bearer token or, failing that, the session cookie
func Credential(c *gin.Context, cookieName string) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}

// RequireSession stops requests whose credential the resolver rejects.
// Browser page loads are sent back to the login page; everything else gets 401.
func RequireSession(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolver.Resolve(Credential(c, cookieName))
		if !ok {
			if c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html") {
				c.Redirect(http.StatusSeeOther, "/")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

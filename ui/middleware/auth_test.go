package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newGatedRouter(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireSession(resolver, "sess"))
	r.GET("/data", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	return r
}

func TestRequireSession_SingleUser(t *testing.T) {
	r := newGatedRouter(NewSessionResolver(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/data", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, DefaultUserID, w.Body.String())
}

func TestRequireSession_SharedToken(t *testing.T) {
	r := newGatedRouter(NewSessionResolver("s3cret"))

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"no credential", func(*http.Request) {}, http.StatusUnauthorized},
		{"wrong bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer s3cret") }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sess", Value: "s3cret"}) }, http.StatusOK},
		{"browser redirect", func(r *http.Request) { r.Header.Set("Accept", "text/html") }, http.StatusSeeOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/data", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestSharedToken_RejectsEmpty(t *testing.T) {
	_, ok := NewSharedToken("x").Resolve("")
	assert.False(t, ok)
	assert.True(t, NewSharedToken("x").RequiresCredential())
	assert.False(t, SingleUser{}.RequiresCredential())
}

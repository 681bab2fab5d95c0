// Package session owns the HTTP session cookie: one HTTP-only cookie named
// "token" carrying the signed session JWT.
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const CookieName = "token"

// SetCookie writes the session cookie. Secure is off only in local
// development; SameSite stays strict everywhere.
func SetCookie(ctx *gin.Context, token string, maxAge time.Duration, secure bool) {
	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		CookieName,
		token,
		int(maxAge.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

// ClearCookie expires the session cookie immediately.
func ClearCookie(ctx *gin.Context, secure bool) {
	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		CookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}

// ReadCookie returns the raw token and whether the cookie was present.
func ReadCookie(ctx *gin.Context) (string, bool) {
	raw, err := ctx.Cookie(CookieName)

	if err != nil || raw == "" {
		return "", false
	}

	return raw, true
}

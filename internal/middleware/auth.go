package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sampahku/internal/models"
	"sampahku/internal/services"
)

// SessionCookie is the cookie that carries the session token
const SessionCookie = "session"

const principalKey = "principal"

// RequireAuth returns a middleware that verifies the session token from the
// session cookie or an Authorization: Bearer header
func RequireAuth(sessions *services.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				if cookie, err := c.Cookie(SessionCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Silakan masuk terlebih dahulu")
			}

			principal, err := sessions.Verify(token)
			if err != nil {
				// Invalid session, clear cookie
				ClearSessionCookie(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "Sesi tidak valid atau sudah berakhir")
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// RequireRole rejects principals whose role is not in roles
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := CurrentPrincipal(c)
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Silakan masuk terlebih dahulu")
			}
			if !allowed[p.Role] {
				return echo.NewHTTPError(http.StatusForbidden, "Anda tidak memiliki akses ke halaman ini")
			}
			return next(c)
		}
	}
}

// CurrentPrincipal returns the signed-in principal, or nil outside RequireAuth
func CurrentPrincipal(c echo.Context) *services.Principal {
	p, _ := c.Get(principalKey).(*services.Principal)
	return p
}

// SetSessionCookie stores the token in an HTTP-only cookie
func SetSessionCookie(c echo.Context, token string, maxAge int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

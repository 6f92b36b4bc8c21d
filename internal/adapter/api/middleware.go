package api

import (
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/authapp"
	sessionapp "github.com/ashwin-iyer1/portfolio_backend/internal/app/session"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

const (
	KeyAdmin      = "admin"
	KeySessionID  = "session_id"
	SessionCookie = "portfolio_session"
)

func AdminRequired(authorizer *authapp.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			parts := strings.Split(header, " ")
			if len(parts) != 2 {
				return JsonError(c, http.StatusUnauthorized, "Invalid Authorization header")
			}
			if parts[0] != "Bearer" {
				return JsonError(c, http.StatusUnauthorized, "Invalid Authorization header")
			}
			if authorizer == nil {
				return JsonError(c, http.StatusForbidden, authapp.ErrNoSecret)
			}
			data, err := authorizer.ValidateAccessToken(parts[1])
			if err != nil {
				return JsonError(c, http.StatusUnauthorized, err.Error())
			}
			c.Set(KeyAdmin, data)
			return next(c)
		}
	}
}

// WithSession attaches the visitor's session id to the request, starting a
// session and setting its cookie when the request carries none.
func WithSession(store *sessionapp.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				id = cookie.Value
			}

			sess, created := store.Start(id)
			if created {
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(KeySessionID, sess.ID)
			return next(c)
		}
	}
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(KeySessionID).(string)
	return id
}

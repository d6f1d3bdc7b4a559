package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leafscan/backend/internal/session"
)

// SessionCookie names the browser session cookie.
const SessionCookie = "leafscan_session"

// currentSession resolves the caller's UI session, issuing a cookie for new ones.
func currentSession(c echo.Context, store SessionStore) *session.SessionState {
	var id string
	if ck, err := c.Cookie(SessionCookie); err == nil {
		id = ck.Value
	}

	s, created := store.GetOrCreate(id)
	if created || s.ID != id {
		c.SetCookie(&http.Cookie{
			Name:     SessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

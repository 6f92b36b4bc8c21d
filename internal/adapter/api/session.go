package api

import (
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/session"
	"github.com/labstack/echo/v4"
	"net/http"
	"time"
)

func (s *Server) MountSession() {
	withSession := WithSession(s.sessions)
	s.handler.GET("/api/session", s.GetSession, withSession)
	s.handler.POST("/api/session", s.GetSession, withSession)
	s.handler.DELETE("/api/session", s.EndSession)
	s.handler.GET("/api/session/intro", s.GetSession, withSession)
	s.handler.POST("/api/session/intro", s.MarkIntroPlayed, withSession)
}

type SessionResponse struct {
	ID          string    `json:"id"`
	IntroPlayed bool      `json:"intro_played"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func newSessionResponse(sess session.Session) *SessionResponse {
	return &SessionResponse{
		ID:          sess.ID,
		IntroPlayed: sess.IntroPlayed(),
		CreatedAt:   sess.CreatedAt,
		LastSeenAt:  sess.LastSeenAt,
	}
}

func (s *Server) GetSession(c echo.Context) error {
	sess, err := s.sessions.Get(sessionID(c))
	if err != nil {
		return JsonError(c, http.StatusNotFound, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

func (s *Server) MarkIntroPlayed(c echo.Context) error {
	sess, err := s.sessions.MarkIntroPlayed(sessionID(c))
	if err != nil {
		return JsonError(c, http.StatusNotFound, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

func (s *Server) EndSession(c echo.Context) error {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return JsonError(c, http.StatusNotFound, session.ErrSessionNotFound)
	}

	if err := s.sessions.End(cookie.Value); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return JsonError(c, http.StatusNotFound, err)
		}
		return s.internalError(c, "failed to end session", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}

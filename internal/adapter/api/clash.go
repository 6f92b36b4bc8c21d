package api

import (
	"encoding/json"
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/snapshotfile"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (s *Server) MountClash() {
	s.handler.GET("/api/clash", s.GetClash)
}

func (s *Server) GetClash(c echo.Context) error {
	var player json.RawMessage
	if err := s.snapshots.Read(snapshotfile.Clash, &player); err != nil {
		if errors.Is(err, snapshotfile.ErrSnapshotMissing) {
			return JsonError(c, http.StatusNotFound, "clash snapshot not found")
		}
		return s.internalError(c, "failed to read clash snapshot", err)
	}
	return c.JSONBlob(http.StatusOK, player)
}

package api

import (
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/snapshot"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (s *Server) MountAdmin() {
	adminRequired := AdminRequired(s.authorizer)
	s.handler.POST("/admin/snapshots/:name", s.RefreshSnapshot, adminRequired)
}

type RefreshSnapshotRequest struct {
	Name  string `param:"name" validate:"required"`
	Force bool   `query:"force"`
}

func (s *Server) RefreshSnapshot(c echo.Context) error {
	var req RefreshSnapshotRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	// Bind skips query params on POST.
	if err := echo.QueryParamsBinder(c).Bool("force", &req.Force).BindError(); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	name, err := snapshot.ParseName(req.Name)
	if err != nil {
		return JsonError(c, http.StatusNotFound, err)
	}

	report, err := s.refresher.Refresh(c.Request().Context(), name, req.Force)
	if err != nil {
		if errors.Is(err, snapshot.ErrUnknownSnapshot) {
			return JsonError(c, http.StatusNotFound, err)
		}
		s.logger.Error("snapshot refresh failed", "snapshot", name, "err", err)
		return JsonError(c, http.StatusBadGateway, err)
	}
	return c.JSON(http.StatusOK, report)
}

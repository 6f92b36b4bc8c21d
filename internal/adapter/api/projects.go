package api

import (
	projectservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/project"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/labstack/echo/v4"
	"net/http"
)

// HeaderDataSource names the tier that served a two-tier response.
const HeaderDataSource = "X-Data-Source"

func (s *Server) MountProjects() {
	s.handler.GET("/api/data", s.GetAllProjects)
	s.handler.GET("/api/projects", s.ListProjects)
}

func (s *Server) getProjectsUoW() *unitofwork.UnitOfWork[*projectservice.AtomicContext] {
	return unitofwork.New[*projectservice.AtomicContext](
		s.db,
		projectservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type ListProjectsRequest struct {
	All bool `query:"all"`
}

func (s *Server) GetAllProjects(c echo.Context) error {
	return s.listProjects(c, true)
}

func (s *Server) ListProjects(c echo.Context) error {
	var req ListProjectsRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	return s.listProjects(c, req.All)
}

func (s *Server) listProjects(c echo.Context, all bool) error {
	uow := s.getProjectsUoW()
	ctx := c.Request().Context()

	res, err := s.projectService.List(ctx, uow, all)
	if err != nil {
		return s.internalError(c, "failed to list projects", err)
	}

	c.Response().Header().Set(HeaderDataSource, res.Tier)
	return c.JSON(http.StatusOK, res.Value)
}

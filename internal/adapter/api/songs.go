package api

import (
	songservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/song"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (s *Server) MountSongs() {
	s.handler.GET("/api/songs", s.ListSongs)
}

func (s *Server) getSongsUoW() *unitofwork.UnitOfWork[*songservice.AtomicContext] {
	return unitofwork.New[*songservice.AtomicContext](
		s.db,
		songservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

func (s *Server) ListSongs(c echo.Context) error {
	uow := s.getSongsUoW()
	ctx := c.Request().Context()

	res, err := s.songService.List(ctx, uow)
	if err != nil {
		return s.internalError(c, "failed to list songs", err)
	}

	c.Response().Header().Set(HeaderDataSource, res.Tier)
	return c.JSON(http.StatusOK, res.Value)
}

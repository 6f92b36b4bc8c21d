package api

import (
	ouraservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/oura"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (s *Server) MountOura() {
	s.handler.GET("/api/oura", s.GetOura)
}

func (s *Server) getOuraUoW() *unitofwork.UnitOfWork[*ouraservice.AtomicContext] {
	return unitofwork.New[*ouraservice.AtomicContext](
		s.db,
		ouraservice.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type GetOuraRequest struct {
	Type      string `query:"type"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type GetOuraResponse struct {
	Data  []any             `json:"data"`
	Range ouraservice.Range `json:"range"`
}

func (r *GetOuraRequest) query() (ouraservice.Query, error) {
	var q ouraservice.Query
	if r.Type != "" {
		t, err := oura.ParseMetricType(r.Type)
		if err != nil {
			return q, err
		}
		q.Type = &t
	}
	var err error
	if q.Start, err = parseOptionalDay(r.StartDate); err != nil {
		return q, err
	}
	if q.End, err = parseOptionalDay(r.EndDate); err != nil {
		return q, err
	}
	return q, nil
}

func parseOptionalDay(s string) (*oura.Day, error) {
	if s == "" {
		return nil, nil
	}
	d, err := oura.ParseDay(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Server) GetOura(c echo.Context) error {
	var req GetOuraRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	q, err := req.query()
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	uow := s.getOuraUoW()
	ctx := c.Request().Context()

	res, err := s.ouraService.Query(ctx, uow, q)
	if err != nil {
		return s.internalError(c, "failed to query oura data", err)
	}

	return c.JSON(http.StatusOK, &GetOuraResponse{
		Data:  res.Data(),
		Range: res.Range,
	})
}

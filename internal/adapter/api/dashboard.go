package api

import (
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/dashboard"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

func (s *Server) MountDashboard() {
	withSession := WithSession(s.sessions)
	s.handler.GET("/api/oura/dashboard", s.GetDashboard, withSession)
	s.handler.GET("/api/oura/dashboard/current", s.GetCurrentDashboard, withSession)
}

type GetDashboardRequest struct {
	StartDate string   `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Subset    []string `query:"subset"`
	Dark      bool     `query:"dark"`
}

type DashboardRange struct {
	Start *oura.Day `json:"start"`
	End   *oura.Day `json:"end"`
}

type DashboardResponse struct {
	Range   DashboardRange       `json:"range"`
	Subset  []dashboard.Key      `json:"subset"`
	Metrics *dashboard.ViewModel `json:"metrics"`
	Widgets []dashboard.Widget   `json:"widgets"`
}

// splitSubset accepts both repeated subset params and comma lists.
func splitSubset(raw []string) []string {
	var keys []string
	for _, r := range raw {
		for _, k := range strings.Split(r, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func (s *Server) dashboardRequest(req *GetDashboardRequest) (dashboard.Request, error) {
	r := dashboard.DateRangeFor(s.now(), s.dashboardDays)
	if start, err := parseOptionalDay(req.StartDate); err != nil {
		return dashboard.Request{}, err
	} else if start != nil {
		r.Start = start
	}
	if end, err := parseOptionalDay(req.EndDate); err != nil {
		return dashboard.Request{}, err
	} else if end != nil {
		r.End = end
	}

	subset, err := s.catalog.ParseKeys(splitSubset(req.Subset))
	if err != nil {
		return dashboard.Request{}, err
	}
	return dashboard.Request{Range: r, Subset: subset}, nil
}

func newDashboardResponse(vm *dashboard.ViewModel, req dashboard.Request, dark bool) *DashboardResponse {
	subset := req.Subset
	if subset == nil {
		subset = make([]dashboard.Key, 0)
	}
	return &DashboardResponse{
		Range:   DashboardRange{Start: req.Range.Start, End: req.Range.End},
		Subset:  subset,
		Metrics: vm,
		Widgets: dashboard.Render(vm, req.Subset, dark),
	}
}

func (s *Server) GetDashboard(c echo.Context) error {
	var req GetDashboardRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	dreq, err := s.dashboardRequest(&req)
	if err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	loader, err := s.sessions.Loader(sessionID(c))
	if err != nil {
		return JsonError(c, http.StatusNotFound, err)
	}

	vm, err := loader.Load(c.Request().Context(), dreq)
	if err != nil {
		switch {
		case errors.Is(err, dashboard.ErrSuperseded):
			return JsonError(c, http.StatusConflict, err)
		case errors.Is(err, dashboard.ErrUnknownKey):
			return JsonError(c, http.StatusBadRequest, err)
		case errors.Is(err, dashboard.ErrUpstreamFetchFailed):
			s.logger.Error("dashboard load failed", "session", sessionID(c), "err", err)
			return JsonError(c, http.StatusBadGateway, dashboard.ErrUpstreamFetchFailed)
		default:
			return s.internalError(c, "dashboard load failed", err)
		}
	}

	return c.JSON(http.StatusOK, newDashboardResponse(vm, dreq, req.Dark))
}

func (s *Server) GetCurrentDashboard(c echo.Context) error {
	var req GetDashboardRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	loader, err := s.sessions.Loader(sessionID(c))
	if err != nil {
		return JsonError(c, http.StatusNotFound, err)
	}

	vm, dreq, ok := loader.Current()
	if !ok {
		return JsonError(c, http.StatusNotFound, "no dashboard loaded")
	}
	return c.JSON(http.StatusOK, newDashboardResponse(vm, dreq, req.Dark))
}

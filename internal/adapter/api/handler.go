package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/authapp"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/dashboard"
	ouraservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/oura"
	projectservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/project"
	sessionapp "github.com/ashwin-iyer1/portfolio_backend/internal/app/session"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/snapshot"
	songservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/song"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
	"log/slog"
	"net/http"
	"time"
)

type SnapshotReader interface {
	Read(name string, v any) error
}

type Server struct {
	handler        *echo.Echo
	logger         *slog.Logger
	addr           string
	db             storage.DBContext
	ouraService    *ouraservice.Service
	catalog        *dashboard.Catalog
	dashboardDays  int
	sessions       *sessionapp.Store
	projectService *projectservice.Service
	songService    *songservice.Service
	snapshots      SnapshotReader
	refresher      *snapshot.Refresher
	authorizer     *authapp.Authorizer
	msgBus         unitofwork.MessageBus
	validator      *validator.Validate
	now            func() time.Time
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Server.WriteTimeout = 30 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.IdleTimeout = 60 * time.Second
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.MaxHeaderBytes = 8192

	v := validator.New(validator.WithRequiredStructEnabled())

	s := &Server{
		handler:       e,
		logger:        slog.Default(),
		validator:     v,
		catalog:       dashboard.DefaultCatalog,
		dashboardDays: 30,
		now:           time.Now,
	}

	for _, opt := range opt {
		opt(s)
	}

	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.MountOura()
	s.MountDashboard()
	s.MountProjects()
	s.MountSongs()
	s.MountClash()
	s.MountSession()
	s.MountAdmin()
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

func (s *Server) bind(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return fmt.Errorf("bad request")
	}
	if err := s.validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("bad request")
		}
		return fmt.Errorf("%s: %s", errs[0].Field(), errs[0].Error())
	}
	return nil
}

// Package bootstrap assembles the services shared by the server and the
// operator CLI from a loaded config.
package bootstrap

import (
	"context"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/clash"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/github"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/snapshotfile"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/authapp"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/dashboard"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/messagebus"
	ouraservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/oura"
	projectservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/project"
	sessionapp "github.com/ashwin-iyer1/portfolio_backend/internal/app/session"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/snapshot"
	songservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/song"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/config"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
	"github.com/leporo/sqlf"
	"github.com/samber/lo"
	"io"
	"log/slog"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *storage.DB
	Bus        *messagebus.MessageBus
	Snapshots  *snapshotfile.Store
	Oura       *ouraservice.Service
	Projects   *projectservice.Service
	Songs      *songservice.Service
	Refresher  *snapshot.Refresher
	Aggregator *dashboard.Aggregator
	Authorizer *authapp.Authorizer
}

func NewLogger(env config.Environment, w io.Writer) *slog.Logger {
	var handler slog.Handler
	switch env {
	case config.Development:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}

// New opens the database, migrating it when configured, and wires every
// service. The returned App must be closed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.DB.Driver == config.DriverPostgres {
		sqlf.SetDialect(sqlf.PostgreSQL)
	}

	db, err := storage.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Bus:       messagebus.New(logger),
		Snapshots: snapshotfile.New(cfg.Snapshots.Dir),
		Oura:      ouraservice.New(logger),
		Authorizer: &authapp.Authorizer{
			Secret:         cfg.Admin.Secret,
			AccessTokenTTL: cfg.Admin.TokenTTL,
		},
	}

	extra := lo.Map(cfg.GitHub.Extra, func(r config.Repo, _ int) *project.Project {
		return project.New(r.Name, r.Description, r.URL)
	})
	app.Projects = projectservice.New(logger, app.Snapshots, snapshotfile.Projects,
		projectservice.WithHidden(cfg.GitHub.Hidden...),
		projectservice.WithExtra(extra...),
	)
	app.Songs = songservice.New(logger, app.Snapshots, snapshotfile.Songs)

	app.Refresher = snapshot.New(logger, app.Snapshots,
		github.New(cfg.GitHub.APIURL, cfg.GitHub.User, cfg.GitHub.Token),
		clash.New(cfg.Clash.APIURL, cfg.Clash.Token),
		cfg.Clash.PlayerTag,
		app.Projects, app.ProjectUoW(),
		app.Songs, app.SongUoW(),
	)
	app.Bus.Register(project.EventRefreshed, app.Refresher.OnProjectsRefreshed)

	app.Aggregator = dashboard.NewAggregator(
		dashboard.DefaultCatalog,
		dashboard.NewServiceFetcher(app.Oura, app.OuraUoW()),
		logger,
		dashboard.WithHeartRateWindow(cfg.Oura.HeartRateWindow),
	)
	return app, nil
}

func (a *App) OuraUoW() *unitofwork.UnitOfWork[*ouraservice.AtomicContext] {
	return unitofwork.New[*ouraservice.AtomicContext](a.DB, ouraservice.NewAtomicContext, a.Bus, a.Logger)
}

func (a *App) ProjectUoW() *unitofwork.UnitOfWork[*projectservice.AtomicContext] {
	return unitofwork.New[*projectservice.AtomicContext](a.DB, projectservice.NewAtomicContext, a.Bus, a.Logger)
}

func (a *App) SongUoW() *unitofwork.UnitOfWork[*songservice.AtomicContext] {
	return unitofwork.New[*songservice.AtomicContext](a.DB, songservice.NewAtomicContext, a.Bus, a.Logger)
}

// Sessions returns a session store whose loaders share the app's aggregator.
func (a *App) Sessions(opts ...sessionapp.Option) *sessionapp.Store {
	return sessionapp.NewStore(func() *dashboard.Loader {
		return dashboard.NewLoader(a.Aggregator)
	}, opts...)
}

// Close waits for pending event handlers before closing the database.
func (a *App) Close() error {
	a.Bus.Close()
	return a.DB.Close()
}

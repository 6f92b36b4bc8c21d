package api

import (
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/authapp"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/dashboard"
	ouraservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/oura"
	projectservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/project"
	sessionapp "github.com/ashwin-iyer1/portfolio_backend/internal/app/session"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/snapshot"
	songservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/song"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"log/slog"
	"net"
	"strconv"
	"time"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func DBContext(db storage.DBContext) Option {
	return func(s *Server) {
		s.db = db
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}

func OuraService(service *ouraservice.Service) Option {
	return func(s *Server) {
		s.ouraService = service
	}
}

// Dashboard sets the metric catalog and the default number of days shown.
func Dashboard(catalog *dashboard.Catalog, days int) Option {
	return func(s *Server) {
		s.catalog = catalog
		if days > 0 {
			s.dashboardDays = days
		}
	}
}

func Sessions(store *sessionapp.Store) Option {
	return func(s *Server) {
		s.sessions = store
	}
}

func ProjectService(service *projectservice.Service) Option {
	return func(s *Server) {
		s.projectService = service
	}
}

func SongService(service *songservice.Service) Option {
	return func(s *Server) {
		s.songService = service
	}
}

func Snapshots(reader SnapshotReader) Option {
	return func(s *Server) {
		s.snapshots = reader
	}
}

func Refresher(r *snapshot.Refresher) Option {
	return func(s *Server) {
		s.refresher = r
	}
}

func Authorizer(a *authapp.Authorizer) Option {
	return func(s *Server) {
		s.authorizer = a
	}
}

func Clock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

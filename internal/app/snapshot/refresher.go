// Package snapshot refreshes the JSON snapshots the site serves when its
// database is unreachable.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/snapshotfile"
	projectservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/project"
	songservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/song"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
	"log/slog"
	"time"
)

var (
	ErrUnknownSnapshot = errors.New("unknown snapshot")
)

type Name string

const (
	Projects Name = "projects"
	Songs    Name = "songs"
	Clash    Name = "clash"
)

func ParseName(s string) (Name, error) {
	switch n := Name(s); n {
	case Projects, Songs, Clash:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSnapshot, s)
	}
}

type Writer interface {
	Write(name string, v any) error
}

type RepoLister interface {
	ListRepos(ctx context.Context) ([]*project.Project, error)
}

type PlayerFetcher interface {
	Player(ctx context.Context, tag string) (json.RawMessage, error)
}

// Report describes one refresh run.
type Report struct {
	Name    Name          `json:"name"`
	Skipped bool          `json:"skipped"`
	Reason  string        `json:"reason,omitempty"`
	Count   int           `json:"count"`
	Plan    *project.Plan `json:"-"`
}

type Option func(r *Refresher)

func WithClock(now func() time.Time) Option {
	return func(r *Refresher) {
		r.now = now
	}
}

type Refresher struct {
	logger    *slog.Logger
	store     Writer
	github    RepoLister
	clash     PlayerFetcher
	playerTag string

	projects   *projectservice.Service
	projectUoW *unitofwork.UnitOfWork[*projectservice.AtomicContext]
	songs      *songservice.Service
	songUoW    *unitofwork.UnitOfWork[*songservice.AtomicContext]

	now func() time.Time
}

func New(
	logger *slog.Logger,
	store Writer,
	github RepoLister,
	clash PlayerFetcher,
	playerTag string,
	projects *projectservice.Service,
	projectUoW *unitofwork.UnitOfWork[*projectservice.AtomicContext],
	songs *songservice.Service,
	songUoW *unitofwork.UnitOfWork[*songservice.AtomicContext],
	opts ...Option,
) *Refresher {
	r := &Refresher{
		logger:     logger,
		store:      store,
		github:     github,
		clash:      clash,
		playerTag:  playerTag,
		projects:   projects,
		projectUoW: projectUoW,
		songs:      songs,
		songUoW:    songUoW,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Refresher) Refresh(ctx context.Context, name Name, force bool) (Report, error) {
	switch name {
	case Projects:
		return r.RefreshProjects(ctx)
	case Songs:
		return r.RefreshSongs(ctx, force)
	case Clash:
		return r.RefreshClash(ctx)
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownSnapshot, name)
	}
}

// RefreshProjects stores the user's repositories. repos.json is written by
// the project.refreshed handler once the change is committed.
func (r *Refresher) RefreshProjects(ctx context.Context) (Report, error) {
	fetched, err := r.github.ListRepos(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list repos: %w", err)
	}

	plan, err := r.projects.Refresh(ctx, r.projectUoW, fetched)
	if err != nil {
		return Report{}, err
	}
	return Report{Name: Projects, Count: len(fetched), Plan: &plan}, nil
}

// RefreshSongs dumps the songs table. Without force it only runs on
// Saturdays.
func (r *Refresher) RefreshSongs(ctx context.Context, force bool) (Report, error) {
	if !force && r.now().Weekday() != time.Saturday {
		r.logger.Info("songs snapshot is only refreshed on saturdays")
		return Report{Name: Songs, Skipped: true, Reason: "songs are saved only on saturdays"}, nil
	}

	songs, err := r.songs.Stored(ctx, r.songUoW)
	if err != nil {
		return Report{}, err
	}
	if err := r.store.Write(snapshotfile.Songs, songs); err != nil {
		return Report{}, fmt.Errorf("write songs snapshot: %w", err)
	}

	r.logger.Info("songs snapshot saved", "songs", len(songs))
	return Report{Name: Songs, Count: len(songs)}, nil
}

func (r *Refresher) RefreshClash(ctx context.Context) (Report, error) {
	player, err := r.clash.Player(ctx, r.playerTag)
	if err != nil {
		return Report{}, fmt.Errorf("fetch player: %w", err)
	}

	var pretty any
	if err := json.Unmarshal(player, &pretty); err != nil {
		return Report{}, fmt.Errorf("decode player: %w", err)
	}
	if err := r.store.Write(snapshotfile.Clash, pretty); err != nil {
		return Report{}, fmt.Errorf("write clash snapshot: %w", err)
	}

	r.logger.Info("clash snapshot saved", "player", r.playerTag)
	return Report{Name: Clash, Count: 1}, nil
}

// OnProjectsRefreshed writes repos.json from a project.refreshed event.
func (r *Refresher) OnProjectsRefreshed(event domain.Event) error {
	e, ok := event.(project.RefreshedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if err := r.store.Write(snapshotfile.Projects, e.Projects); err != nil {
		return fmt.Errorf("write projects snapshot: %w", err)
	}

	r.logger.Info("projects snapshot saved", "projects", len(e.Projects))
	return nil
}

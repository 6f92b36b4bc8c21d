package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/snapshotfile"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/storagetest"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/messagebus"
	projectservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/project"
	songservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/song"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/song"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"
)

type fakeGitHub struct {
	projects []*project.Project
	err      error
}

func (f *fakeGitHub) ListRepos(context.Context) ([]*project.Project, error) {
	return f.projects, f.err
}

type fakeClash struct {
	body json.RawMessage
	err  error
}

func (f *fakeClash) Player(_ context.Context, tag string) (json.RawMessage, error) {
	return f.body, f.err
}

type fixture struct {
	refresher  *Refresher
	store      *snapshotfile.Store
	bus        *messagebus.MessageBus
	songs      *songservice.Service
	songUoW    *unitofwork.UnitOfWork[*songservice.AtomicContext]
	projects   *projectservice.Service
	projectUoW *unitofwork.UnitOfWork[*projectservice.AtomicContext]
}

func setup(t *testing.T, gh *fakeGitHub, clash *fakeClash, now time.Time) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := storagetest.SetupDB(t)
	bus := messagebus.New(logger)
	store := snapshotfile.New(t.TempDir())

	f := &fixture{
		store:      store,
		bus:        bus,
		songs:      songservice.New(logger, store, snapshotfile.Songs),
		songUoW:    unitofwork.New(db, songservice.NewAtomicContext, bus, logger),
		projects:   projectservice.New(logger, store, snapshotfile.Projects, projectservice.WithExtra(project.New("Cookle", "Food guessing game similar to Wordle", "https://s-pat6.github.io/cookle/"))),
		projectUoW: unitofwork.New(db, projectservice.NewAtomicContext, bus, logger),
	}
	f.refresher = New(logger, store, gh, clash, "#29YOY8UJQ",
		f.projects, f.projectUoW, f.songs, f.songUoW,
		WithClock(func() time.Time { return now }))
	bus.Register(project.EventRefreshed, f.refresher.OnProjectsRefreshed)
	return f
}

var (
	saturday = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	monday   = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
)

func TestRefreshProjectsWritesSnapshot(t *testing.T) {
	gh := &fakeGitHub{projects: []*project.Project{
		project.New("portfolio", "site", "https://github.com/x/portfolio"),
		project.New("resume", "", "https://github.com/x/resume"),
	}}
	f := setup(t, gh, &fakeClash{}, monday)
	ctx := context.Background()

	report, err := f.refresher.Refresh(ctx, Projects, false)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if report.Plan == nil || len(report.Plan.Added) != 3 {
		t.Fatalf("expected 3 added projects, got %+v", report.Plan)
	}
	f.bus.Close()

	var snapshot []*project.Project
	if err := f.store.Read(snapshotfile.Projects, &snapshot); err != nil {
		t.Fatalf("Read snapshot failed: %v", err)
	}
	if len(snapshot) != 3 || snapshot[0].Name != "Cookle" {
		t.Errorf("snapshot = %+v", snapshot)
	}

	res, err := f.projects.List(ctx, f.projectUoW, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if res.Tier != projectservice.TierDatabase || len(res.Value) != 3 {
		t.Errorf("List = %d projects from %q", len(res.Value), res.Tier)
	}
}

func TestRefreshProjectsUpstreamFailure(t *testing.T) {
	f := setup(t, &fakeGitHub{err: errors.New("rate limited")}, &fakeClash{}, monday)

	if _, err := f.refresher.RefreshProjects(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	f.bus.Close()
	if _, err := os.Stat(f.store.Path(snapshotfile.Projects)); !os.IsNotExist(err) {
		t.Errorf("snapshot must not be written on failure: %v", err)
	}
}

func TestRefreshSongsOnlyOnSaturday(t *testing.T) {
	ctx := context.Background()

	weekday := setup(t, &fakeGitHub{}, &fakeClash{}, monday)
	report, err := weekday.refresher.RefreshSongs(ctx, false)
	if err != nil {
		t.Fatalf("RefreshSongs failed: %v", err)
	}
	if !report.Skipped {
		t.Error("expected a skipped refresh on monday")
	}
	if _, err := os.Stat(weekday.store.Path(snapshotfile.Songs)); !os.IsNotExist(err) {
		t.Error("songs snapshot written on a weekday")
	}

	forced, err := weekday.refresher.RefreshSongs(ctx, true)
	if err != nil || forced.Skipped {
		t.Fatalf("forced refresh = %+v, %v", forced, err)
	}

	sat := setup(t, &fakeGitHub{}, &fakeClash{}, saturday)
	if err := sat.songs.Add(ctx, sat.songUoW, &song.Song{Name: "Nights", Artist: "Frank Ocean", CoverLink: "https://img"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	report, err = sat.refresher.RefreshSongs(ctx, false)
	if err != nil {
		t.Fatalf("RefreshSongs failed: %v", err)
	}
	if report.Skipped || report.Count != 1 {
		t.Errorf("report = %+v", report)
	}

	var songs []song.Song
	if err := sat.store.Read(snapshotfile.Songs, &songs); err != nil {
		t.Fatalf("Read snapshot failed: %v", err)
	}
	if len(songs) != 1 || songs[0].CoverLink != "https://img" {
		t.Errorf("snapshot = %+v", songs)
	}
}

func TestRefreshClash(t *testing.T) {
	f := setup(t, &fakeGitHub{}, &fakeClash{body: json.RawMessage(`{"tag":"#29YOY8UJQ","name":"ash"}`)}, monday)

	if _, err := f.refresher.Refresh(context.Background(), Clash, false); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	var player map[string]any
	if err := f.store.Read(snapshotfile.Clash, &player); err != nil {
		t.Fatalf("Read snapshot failed: %v", err)
	}
	if player["name"] != "ash" {
		t.Errorf("player = %v", player)
	}
}

func TestParseName(t *testing.T) {
	if _, err := ParseName("weather"); !errors.Is(err, ErrUnknownSnapshot) {
		t.Errorf("expected ErrUnknownSnapshot, got %v", err)
	}
	if n, err := ParseName("songs"); err != nil || n != Songs {
		t.Errorf("ParseName(songs) = %q, %v", n, err)
	}
}

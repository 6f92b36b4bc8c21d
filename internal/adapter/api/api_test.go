package api

import (
	"context"
	"encoding/json"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/snapshotfile"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/storagetest"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/authapp"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/dashboard"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/messagebus"
	ouraservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/oura"
	projectservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/project"
	sessionapp "github.com/ashwin-iyer1/portfolio_backend/internal/app/session"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/snapshot"
	songservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/song"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/song"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type fakeGitHub struct{}

func (fakeGitHub) ListRepos(context.Context) ([]*project.Project, error) {
	return []*project.Project{project.New("portfolio", "site", "https://github.com/x/portfolio")}, nil
}

type fakeClash struct{}

func (fakeClash) Player(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"tag":"#29YOY8UJQ","trophies":5000}`), nil
}

type testEnv struct {
	server     *Server
	db         *storage.DB
	snapshots  *snapshotfile.Store
	oura       *ouraservice.Service
	ouraUoW    *unitofwork.UnitOfWork[*ouraservice.AtomicContext]
	songs      *songservice.Service
	songUoW    *unitofwork.UnitOfWork[*songservice.AtomicContext]
	authorizer *authapp.Authorizer
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	now := func() time.Time { return fixedNow }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := storagetest.SetupDB(t)
	bus := messagebus.New(logger)
	t.Cleanup(bus.Close)
	snapshots := snapshotfile.New(t.TempDir())

	ouraService := ouraservice.New(logger, ouraservice.WithClock(now))
	ouraUoW := unitofwork.New(db, ouraservice.NewAtomicContext, bus, logger)
	aggregator := dashboard.NewAggregator(
		dashboard.DefaultCatalog,
		dashboard.NewServiceFetcher(ouraService, ouraUoW),
		logger,
		dashboard.WithClock(now),
	)
	sessions := sessionapp.NewStore(func() *dashboard.Loader {
		return dashboard.NewLoader(aggregator)
	}, sessionapp.WithClock(now))

	projects := projectservice.New(logger, snapshots, snapshotfile.Projects, projectservice.WithHidden("resume"))
	songs := songservice.New(logger, snapshots, snapshotfile.Songs)
	songUoW := unitofwork.New(db, songservice.NewAtomicContext, bus, logger)
	refresher := snapshot.New(logger, snapshots, fakeGitHub{}, fakeClash{}, "#29YOY8UJQ",
		projects, unitofwork.New(db, projectservice.NewAtomicContext, bus, logger),
		songs, songUoW,
		snapshot.WithClock(now))
	bus.Register(project.EventRefreshed, refresher.OnProjectsRefreshed)

	authorizer := &authapp.Authorizer{Secret: "secret", AccessTokenTTL: time.Hour, Now: now}

	server := NewServer(
		Logger(logger),
		DBContext(db),
		MessageBus(bus),
		OuraService(ouraService),
		Dashboard(dashboard.DefaultCatalog, 30),
		Sessions(sessions),
		ProjectService(projects),
		SongService(songs),
		Snapshots(snapshots),
		Refresher(refresher),
		Authorizer(authorizer),
		Clock(now),
	)

	return &testEnv{
		server:     server,
		db:         db,
		snapshots:  snapshots,
		oura:       ouraService,
		ouraUoW:    ouraUoW,
		songs:      songs,
		songUoW:    songUoW,
		authorizer: authorizer,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) importDays(t *testing.T, mt oura.MetricType, body string) {
	t.Helper()
	records, err := oura.DayRecordsFromAPI(mt, []byte(body))
	if err != nil {
		t.Fatalf("failed to build records: %v", err)
	}
	if err := e.oura.Import(context.Background(), e.ouraUoW, records); err != nil {
		t.Fatalf("failed to import records: %v", err)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) http.Header {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return http.Header{"Cookie": {c.String()}}
		}
	}
	t.Fatalf("response has no %s cookie", SessionCookie)
	return nil
}

func TestGetOuraRejectsMalformedParams(t *testing.T) {
	env := setupServer(t)

	tests := []struct {
		name   string
		target string
	}{
		{"unknown type", "/api/oura?type=sleep"},
		{"bad start", "/api/oura?start_date=2026-13-01"},
		{"bad end", "/api/oura?type=activity&end_date=yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
			if body := decode[JsonErrorModel](t, rec); body.Message == "" {
				t.Errorf("expected an error message")
			}
		})
	}
}

func TestGetOuraHeartRateIsClamped(t *testing.T) {
	env := setupServer(t)
	env.importDays(t, oura.TypeHeartRate, `{"data": [
		{"bpm": 55, "source": "rest", "timestamp": "2026-10-10T03:00:00+00:00"},
		{"bpm": 60, "source": "awake", "timestamp": "2026-10-18T10:00:00+00:00"},
		{"bpm": 70, "source": "awake", "timestamp": "2026-10-19T09:00:00+00:00"}
	]}`)

	rec := env.do(t, http.MethodGet, "/api/oura?type=heart_rate&start_date=2026-10-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	body := decode[struct {
		Data  []oura.HeartRatePoint `json:"data"`
		Range struct {
			Start   string `json:"start"`
			Clamped bool   `json:"clamped"`
		} `json:"range"`
	}](t, rec)

	if !body.Range.Clamped || body.Range.Start != "2026-10-18" {
		t.Errorf("range = %+v, want clamped start 2026-10-18", body.Range)
	}
	if len(body.Data) != 2 || body.Data[0].BPM != 60 {
		t.Errorf("data = %+v, want points from 2026-10-18 on", body.Data)
	}
}

func TestGetOuraHeartRatePassesPointsThrough(t *testing.T) {
	env := setupServer(t)
	env.importDays(t, oura.TypeHeartRate, `{"data": [
		{"bpm": 58.5, "source": "rest", "timestamp": "2026-10-19T08:00:00+00:00", "confidence": 2},
		{"bpm": null, "source": "awake", "timestamp": "2026-10-19T09:00:00+00:00"}
	]}`)

	rec := env.do(t, http.MethodGet, "/api/oura?type=heart_rate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	body := decode[struct {
		Data []map[string]any `json:"data"`
	}](t, rec)

	if len(body.Data) != 2 {
		t.Fatalf("data = %+v, want 2 points", body.Data)
	}
	first := body.Data[0]
	if first["bpm"] != 58.5 || first["confidence"] != float64(2) || first["source"] != "rest" {
		t.Errorf("first point = %+v, want upstream fields kept", first)
	}
	if v, ok := body.Data[1]["bpm"]; !ok || v != nil {
		t.Errorf("second point = %+v, want null bpm kept", body.Data[1])
	}
}

func TestGetOuraEmptyDataIsList(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodGet, "/api/oura?type=activity", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty data list", rec.Body)
	}
}

func TestGetOuraStorageFailure(t *testing.T) {
	env := setupServer(t)
	_ = env.db.Close()

	rec := env.do(t, http.MethodGet, "/api/oura?type=activity", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decode[JsonErrorModel](t, rec); body.Message != MessageInternal {
		t.Errorf("message = %q, want %q", body.Message, MessageInternal)
	}
}

type dashboardBody struct {
	Range   DashboardRange             `json:"range"`
	Subset  []dashboard.Key            `json:"subset"`
	Widgets []dashboard.Widget         `json:"widgets"`
	Metrics map[string]json.RawMessage `json:"metrics"`
}

func TestDashboardLoadAndCurrent(t *testing.T) {
	env := setupServer(t)
	env.importDays(t, oura.TypeActivity, `{"data": [
		{"day": "2026-10-17", "steps": 9000},
		{"day": "2026-10-18", "steps": 12000}
	]}`)

	rec := env.do(t, http.MethodGet, "/api/oura/dashboard?subset=activity,readiness", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	cookie := sessionCookie(t, rec)

	body := decode[dashboardBody](t, rec)

	if body.Range.Start == nil || body.Range.Start.String() != "2026-09-19" {
		t.Errorf("range start = %v, want default 30 days back", body.Range.Start)
	}
	if m := string(body.Metrics[string(dashboard.FieldActivity)]); m == "" || m == "[]" {
		t.Errorf("metrics = %v, want activity list", body.Metrics)
	}
	if len(body.Widgets) != 2 || body.Widgets[0].Key != dashboard.KeyActivity {
		t.Fatalf("widgets = %+v, want activity then readiness", body.Widgets)
	}
	if body.Widgets[0].Empty {
		t.Errorf("activity widget is empty")
	}
	if !body.Widgets[1].Empty {
		t.Errorf("readiness widget should be empty")
	}

	current := env.do(t, http.MethodGet, "/api/oura/dashboard/current", cookie)
	if current.Code != http.StatusOK {
		t.Fatalf("current status = %d: %s", current.Code, current.Body)
	}
	if got := decode[dashboardBody](t, current); len(got.Widgets) != 2 {
		t.Errorf("current widgets = %d, want 2", len(got.Widgets))
	}
}

func TestDashboardCurrentWithoutLoad(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodGet, "/api/oura/dashboard/current", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDashboardRejectsUnknownKey(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodGet, "/api/oura/dashboard?subset=activity&subset=mood", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDashboardStorageFailure(t *testing.T) {
	env := setupServer(t)
	_ = env.db.Close()

	rec := env.do(t, http.MethodGet, "/api/oura/dashboard?subset=activity", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestProjectsFallBackToSnapshot(t *testing.T) {
	env := setupServer(t)

	if rec := env.do(t, http.MethodGet, "/api/data", nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status without any tier = %d, want 500", rec.Code)
	}

	err := env.snapshots.Write(snapshotfile.Projects, []*project.Project{
		project.New("resume", "", "https://github.com/x/resume"),
		project.New("portfolio", "site", "https://github.com/x/portfolio"),
	})
	if err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/data", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get(HeaderDataSource); got != projectservice.TierSnapshot {
		t.Errorf("%s = %q, want %q", HeaderDataSource, got, projectservice.TierSnapshot)
	}
	all := decode[[]*project.Project](t, rec)
	if len(all) != 2 || all[0].Name != "portfolio" {
		t.Errorf("projects = %+v, want both sorted by name", all)
	}

	visible := decode[[]*project.Project](t, env.do(t, http.MethodGet, "/api/projects", nil))
	if len(visible) != 1 || visible[0].Name != "portfolio" {
		t.Errorf("visible projects = %+v, want resume hidden", visible)
	}

	shown := decode[[]*project.Project](t, env.do(t, http.MethodGet, "/api/projects?all=true", nil))
	if len(shown) != 2 {
		t.Errorf("all projects = %d, want 2", len(shown))
	}
}

func TestSongsFromDatabase(t *testing.T) {
	env := setupServer(t)
	err := env.songs.Add(context.Background(), env.songUoW, &song.Song{
		Name:      "Nights",
		Artist:    "Frank Ocean",
		CoverLink: "https://example.com/blonde.jpg",
	})
	if err != nil {
		t.Fatalf("failed to add song: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/songs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get(HeaderDataSource); got != songservice.TierDatabase {
		t.Errorf("%s = %q, want %q", HeaderDataSource, got, songservice.TierDatabase)
	}
	if !strings.Contains(rec.Body.String(), `"song_name":"Nights"`) {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestClashSnapshot(t *testing.T) {
	env := setupServer(t)

	if rec := env.do(t, http.MethodGet, "/api/clash", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status without snapshot = %d, want 404", rec.Code)
	}

	if err := env.snapshots.WriteRaw(snapshotfile.Clash, []byte(`{"name":"ash"}`)); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	rec := env.do(t, http.MethodGet, "/api/clash", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[map[string]string](t, rec); got["name"] != "ash" {
		t.Errorf("body = %v", got)
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodGet, "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	cookie := sessionCookie(t, rec)
	first := decode[SessionResponse](t, rec)
	if first.IntroPlayed {
		t.Errorf("new session has intro played")
	}

	marked := decode[SessionResponse](t, env.do(t, http.MethodPost, "/api/session/intro", cookie))
	if marked.ID != first.ID || !marked.IntroPlayed {
		t.Errorf("marked = %+v, want intro played on %s", marked, first.ID)
	}

	again := decode[SessionResponse](t, env.do(t, http.MethodGet, "/api/session/intro", cookie))
	if !again.IntroPlayed {
		t.Errorf("intro flag was not kept")
	}

	if rec := env.do(t, http.MethodDelete, "/api/session", cookie); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/session", cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}

	fresh := decode[SessionResponse](t, env.do(t, http.MethodGet, "/api/session", cookie))
	if fresh.ID == first.ID || fresh.IntroPlayed {
		t.Errorf("ended session was reused: %+v", fresh)
	}
}

func TestAdminRefreshRequiresToken(t *testing.T) {
	env := setupServer(t)

	if rec := env.do(t, http.MethodPost, "/admin/snapshots/clash", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}

	bad := http.Header{"Authorization": {"Bearer nope"}}
	if rec := env.do(t, http.MethodPost, "/admin/snapshots/clash", bad); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d, want 401", rec.Code)
	}
}

func TestAdminRefreshSnapshots(t *testing.T) {
	env := setupServer(t)
	token, err := env.authorizer.GenerateAccessToken("admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	auth := http.Header{"Authorization": {"Bearer " + token}}

	rec := env.do(t, http.MethodPost, "/admin/snapshots/clash", auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if _, err := os.Stat(env.snapshots.Path(snapshotfile.Clash)); err != nil {
		t.Errorf("clash snapshot not written: %v", err)
	}

	// 2026-10-19 is a Monday.
	skipped := decode[snapshot.Report](t, env.do(t, http.MethodPost, "/admin/snapshots/songs", auth))
	if !skipped.Skipped {
		t.Errorf("songs refresh ran outside saturday: %+v", skipped)
	}
	forced := decode[snapshot.Report](t, env.do(t, http.MethodPost, "/admin/snapshots/songs?force=true", auth))
	if forced.Skipped {
		t.Errorf("forced songs refresh was skipped")
	}

	if rec := env.do(t, http.MethodPost, "/admin/snapshots/weather", auth); rec.Code != http.StatusNotFound {
		t.Errorf("unknown snapshot status = %d, want 404", rec.Code)
	}
}

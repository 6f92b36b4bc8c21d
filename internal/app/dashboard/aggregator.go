package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"slices"
	"time"
)

var (
	ErrUpstreamFetchFailed = errors.New("upstream fetch failed")
)

const DefaultHeartRateWindow = 24 * time.Hour

// Fetcher returns the data list of one metric type over a day range:
// day payloads, or heart-rate point objects for heart_rate.
type Fetcher interface {
	Fetch(ctx context.Context, t oura.MetricType, r oura.DateRange) ([]json.RawMessage, error)
}

type Request struct {
	Range  oura.DateRange
	Subset []Key
}

type Option func(a *Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func WithHeartRateWindow(window time.Duration) Option {
	return func(a *Aggregator) {
		if window > 0 {
			a.hrWindow = window
		}
	}
}

type Aggregator struct {
	catalog  *Catalog
	fetcher  Fetcher
	logger   *slog.Logger
	now      func() time.Time
	hrWindow time.Duration
}

func NewAggregator(catalog *Catalog, fetcher Fetcher, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog:  catalog,
		fetcher:  fetcher,
		logger:   logger,
		now:      time.Now,
		hrWindow: DefaultHeartRateWindow,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Catalog() *Catalog {
	return a.catalog
}

// Aggregate fetches every resolved metric type concurrently and merges the
// results. A single failed fetch fails the whole aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*ViewModel, error) {
	types, err := a.catalog.Resolve(req.Subset)
	if err != nil {
		return nil, err
	}

	results := make([][]json.RawMessage, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			items, err := a.fetcher.Fetch(gctx, t, req.Range)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", t, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Warn("dashboard aggregation failed", "types", len(types), "err", err)
		return nil, errors.Join(err, ErrUpstreamFetchFailed)
	}

	vm := newViewModel(a.catalog, req.Range)
	for i, t := range types {
		f := a.catalog.Field(t)
		vm.Lists[f] = append(vm.Lists[f], results[i]...)
	}

	a.processHeartRate(vm)
	return vm, nil
}

// processHeartRate keeps the points of the trailing window and fixes the
// chart domain to [now-window, max(now, last point)].
func (a *Aggregator) processHeartRate(vm *ViewModel) {
	now := a.now().UTC()

	points := make([]oura.HeartRatePoint, 0, len(vm.Lists[FieldHeartRate]))
	for _, raw := range vm.Lists[FieldHeartRate] {
		var p oura.HeartRatePoint
		if err := json.Unmarshal(raw, &p); err != nil || p.Timestamp.IsZero() {
			a.logger.Debug("skipping malformed heart rate point", "point", string(raw))
			continue
		}
		points = append(points, p)
	}
	slices.SortStableFunc(points, func(x, y oura.HeartRatePoint) int {
		return x.Timestamp.Compare(y.Timestamp)
	})

	vm.HeartRate = oura.WithinWindow(points, now, a.hrWindow)
	vm.HeartRateDomain = TimeDomain{From: now.Add(-a.hrWindow), To: now}
	if n := len(vm.HeartRate); n > 0 && vm.HeartRate[n-1].Timestamp.After(now) {
		vm.HeartRateDomain.To = vm.HeartRate[n-1].Timestamp
	}

	filtered := make([]json.RawMessage, 0, len(vm.HeartRate))
	for _, p := range vm.HeartRate {
		filtered = append(filtered, p.Raw)
	}
	vm.Lists[FieldHeartRate] = filtered
}

// DateRangeFor is the range of the last days days ending today.
func DateRangeFor(now time.Time, days int) oura.DateRange {
	end := oura.DayOf(now)
	start := end.AddDays(-days)
	return oura.DateRange{Start: &start, End: &end}
}

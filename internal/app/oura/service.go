package ouraservice

import (
	"context"
	"errors"
	"fmt"
	ourastorage "github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/oura"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"log/slog"
	"time"
)

type Query struct {
	Type  *oura.MetricType
	Start *oura.Day
	End   *oura.Day
}

// Range is the day range a query actually used.
type Range struct {
	Start   *oura.Day `json:"start"`
	End     *oura.Day `json:"end"`
	Clamped bool      `json:"clamped"`
}

// Result holds either raw day payloads or, for heart_rate, the flattened
// point sequence.
type Result struct {
	Type      *oura.MetricType
	Records   []*oura.DayRecord
	HeartRate []oura.HeartRatePoint
	Range     Range
}

// Data is the response body's data list: point objects for heart_rate,
// day payloads otherwise.
func (r *Result) Data() []any {
	if r.Type != nil && *r.Type == oura.TypeHeartRate {
		data := make([]any, 0, len(r.HeartRate))
		for _, p := range r.HeartRate {
			data = append(data, p)
		}
		return data
	}

	data := make([]any, 0, len(r.Records))
	for _, rec := range r.Records {
		data = append(data, rec.Payload)
	}
	return data
}

type Option func(s *Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

func New(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Today() oura.Day {
	return oura.DayOf(s.now())
}

func (s *Service) Query(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	q Query,
) (res *Result, outErr error) {
	start, clamped := q.Start, false
	if q.Type != nil {
		start, clamped = oura.EffectiveStart(*q.Type, q.Start, s.Today())
	}

	res = &Result{
		Type:  q.Type,
		Range: Range{Start: start, End: q.End, Clamped: clamped},
	}

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		records, err := ctx.OuraStorage.ListDays(ctx.Context(), ourastorage.Filter{
			Type:  q.Type,
			Range: oura.DateRange{Start: start, End: q.End},
		})
		if err != nil {
			return err
		}
		res.Records = records
		return ctx.Commit()
	})
	if outErr != nil {
		s.logger.Error("failed to query oura data", "type", q.Type, "err", outErr)
		return nil, errors.Join(fmt.Errorf("query oura data: %w", outErr), oura.ErrStorageUnavailable)
	}

	if q.Type != nil && *q.Type == oura.TypeHeartRate {
		points, err := oura.FlattenHeartRate(res.Records)
		if err != nil {
			return nil, err
		}
		res.HeartRate = points
	}
	return res, nil
}

// Import upserts records in one transaction. Existing (type, day) payloads
// are overwritten.
func (s *Service) Import(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	records []*oura.DayRecord,
) error {
	err := uow.Atomic(ctx, func(ctx *AtomicContext) error {
		for _, r := range records {
			if err := ctx.OuraStorage.Upsert(ctx.Context(), r); err != nil {
				return err
			}
		}
		return ctx.Commit()
	})
	if err != nil {
		return errors.Join(fmt.Errorf("import oura data: %w", err), oura.ErrStorageUnavailable)
	}

	s.logger.Info("imported oura data", "records", len(records))
	return nil
}

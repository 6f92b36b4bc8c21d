package ourastorage

import (
	"context"
	"database/sql"
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/pgutil"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/leporo/sqlf"
)

// Filter selects stored day-blobs. A nil Type matches every type.
type Filter struct {
	Type  *oura.MetricType
	Range oura.DateRange
}

type Storage struct {
	base *pgutil.BasePostgresStorage
}

func New(db storage.DBContext) *Storage {
	return &Storage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

// ListDays returns the matching records ordered by day ascending.
func (s *Storage) ListDays(ctx context.Context, f Filter) ([]*oura.DayRecord, error) {
	var (
		day      oura.Day
		dataType string
		payload  []byte
	)

	q := sqlf.From("oura_data").
		Select("date").To(&day).
		Select("data_type").To(&dataType).
		Select("data").To(&payload)

	if f.Type != nil {
		q.Where("data_type = ?", string(*f.Type))
	}
	if f.Range.Start != nil {
		q.Where("date >= ?", *f.Range.Start)
	}
	if f.Range.End != nil {
		q.Where("date <= ?", *f.Range.End)
	}
	q.OrderBy("date ASC", "data_type ASC")

	result := make([]*oura.DayRecord, 0)
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		blob := make([]byte, len(payload))
		copy(blob, payload)
		result = append(result, oura.NewDayRecord(day, oura.MetricType(dataType), blob))
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

// Upsert stores r, replacing the payload already stored for its (type, day).
func (s *Storage) Upsert(ctx context.Context, r *oura.DayRecord) error {
	q := sqlf.InsertInto("oura_data").
		Set("data_type", string(r.Type)).
		Set("date", r.Day).
		Set("data", string(r.Payload)).
		Clause("ON CONFLICT (data_type, date) DO UPDATE SET data = EXCLUDED.data")

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}
	return nil
}

func (s *Storage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *Storage) Close() error {
	s.base.Close()
	return nil
}

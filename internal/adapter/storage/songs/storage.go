package songstorage

import (
	"context"
	"database/sql"
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/pgutil"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/song"
	"github.com/leporo/sqlf"
)

type Storage struct {
	base *pgutil.BasePostgresStorage
}

func New(db storage.DBContext) *Storage {
	return &Storage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *Storage) List(ctx context.Context) ([]*song.Song, error) {
	var tmp song.Song

	q := sqlf.From("songs").
		Select("song_name").To(&tmp.Name).
		Select("artist").To(&tmp.Artist).
		Select("songcoverlink").To(&tmp.CoverLink).
		OrderBy("id ASC")

	result := make([]*song.Song, 0)
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		item := tmp
		result = append(result, &item)
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

func (s *Storage) Add(ctx context.Context, item *song.Song) error {
	q := sqlf.InsertInto("songs").
		Set("song_name", item.Name).
		Set("artist", item.Artist).
		Set("songcoverlink", item.CoverLink)

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

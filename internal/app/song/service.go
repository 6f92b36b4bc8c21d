package songservice

import (
	"context"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/tiered"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/song"
	"log/slog"
)

const (
	TierDatabase = "database"
	TierSnapshot = "snapshot"
)

type SnapshotReader interface {
	Read(name string, v any) error
}

type Service struct {
	logger       *slog.Logger
	snapshots    SnapshotReader
	snapshotName string
}

func New(logger *slog.Logger, snapshots SnapshotReader, snapshotName string) *Service {
	return &Service{
		logger:       logger,
		snapshots:    snapshots,
		snapshotName: snapshotName,
	}
}

// Stored lists the songs in the database only.
func (s *Service) Stored(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (songs []*song.Song, outErr error) {
	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if songs, err = ctx.SongStorage.List(ctx.Context()); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) Add(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	items ...*song.Song,
) error {
	return uow.Atomic(ctx, func(ctx *AtomicContext) error {
		for _, item := range items {
			if err := ctx.SongStorage.Add(ctx.Context(), item); err != nil {
				return err
			}
		}
		return ctx.Commit()
	})
}

// List serves songs from the database, falling back to the snapshot.
func (s *Service) List(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (tiered.Result[[]*song.Song], error) {
	return tiered.New(s.logger,
		tiered.Tier[[]*song.Song]{
			Name: TierDatabase,
			Load: func(ctx context.Context) ([]*song.Song, error) {
				songs, err := s.Stored(ctx, uow)
				if err == nil && len(songs) == 0 {
					return nil, song.ErrNoSongs
				}
				return songs, err
			},
		},
		tiered.Tier[[]*song.Song]{
			Name: TierSnapshot,
			Load: func(context.Context) ([]*song.Song, error) {
				songs := make([]*song.Song, 0)
				if err := s.snapshots.Read(s.snapshotName, &songs); err != nil {
					return nil, err
				}
				return songs, nil
			},
		},
	).Load(ctx)
}

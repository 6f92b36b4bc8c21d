package songservice

import (
	"context"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	songstorage "github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/songs"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/song"
)

type SongStorage interface {
	List(ctx context.Context) ([]*song.Song, error)
	Add(ctx context.Context, s *song.Song) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx         context.Context
	db          storage.DBContext
	SongStorage SongStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.SongStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.SongStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:         ctx,
		db:          dbContext,
		SongStorage: songstorage.New(dbContext),
	}, nil
}

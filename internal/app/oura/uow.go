package ouraservice

import (
	"context"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	ourastorage "github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/oura"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
)

type OuraStorage interface {
	ListDays(ctx context.Context, f ourastorage.Filter) ([]*oura.DayRecord, error)
	Upsert(ctx context.Context, r *oura.DayRecord) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx         context.Context
	db          storage.DBContext
	OuraStorage OuraStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.OuraStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.OuraStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:         ctx,
		db:          dbContext,
		OuraStorage: ourastorage.New(dbContext),
	}, nil
}

package projectservice

import (
	"context"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	projectstorage "github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/projects"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
)

type ProjectStorage interface {
	List(ctx context.Context) ([]*project.Project, error)
	Catalog(ctx context.Context) (*project.Catalog, error)
	Apply(ctx context.Context, plan project.Plan) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx            context.Context
	db             storage.DBContext
	ProjectStorage ProjectStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.ProjectStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.ProjectStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:            ctx,
		db:             dbContext,
		ProjectStorage: projectstorage.New(dbContext),
	}, nil
}

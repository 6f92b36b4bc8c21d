package projectstorage

import (
	"context"
	"database/sql"
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/pgutil"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
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

func (s *Storage) List(ctx context.Context) ([]*project.Project, error) {
	var tmp project.Project

	q := sqlf.From("repos").
		Select("reponame").To(&tmp.Name).
		Select("COALESCE(description, '')").To(&tmp.Description).
		Select("html_url").To(&tmp.URL).
		OrderBy("reponame ASC")

	result := make([]*project.Project, 0)
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, project.New(tmp.Name, tmp.Description, tmp.URL))
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

// Catalog loads every stored project into an aggregate tracked for events.
func (s *Storage) Catalog(ctx context.Context) (*project.Catalog, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	c := project.NewCatalog(projects)
	s.base.MarkSeen(c.ID(), c)
	return c, nil
}

// Apply writes a reconcile plan.
func (s *Storage) Apply(ctx context.Context, plan project.Plan) error {
	for _, p := range plan.Added {
		if err := s.add(ctx, p); err != nil {
			return err
		}
	}

	for _, c := range plan.Changed {
		if len(c.Changes) == 0 {
			continue
		}
		q := pgutil.MakeUpdateQuery(sqlf.Update("repos"), c.Changes).
			Where("reponame = ?", c.Project.Name)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, project.ErrProjectNotFound); err != nil {
			return err
		}
	}

	for _, name := range plan.Removed {
		res, err := sqlf.DeleteFrom("repos").
			Where("reponame = ?", name).
			ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, project.ErrProjectNotFound); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) add(ctx context.Context, p *project.Project) error {
	q := sqlf.InsertInto("repos").
		Set("reponame", p.Name).
		Set("description", p.Description).
		Set("html_url", p.URL)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "repos_pkey", "repos.reponame") {
			return errors.Join(err, project.ErrProjectExists)
		}
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

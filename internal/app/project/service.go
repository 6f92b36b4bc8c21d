package projectservice

import (
	"context"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/tiered"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
	"log/slog"
)

const (
	TierDatabase = "database"
	TierSnapshot = "snapshot"
)

type SnapshotReader interface {
	Read(name string, v any) error
}

type Option func(s *Service)

// WithHidden names projects left out of the public listing.
func WithHidden(names ...string) Option {
	return func(s *Service) {
		s.hidden = append(s.hidden, names...)
	}
}

// WithExtra adds projects that are not GitHub repositories of the user.
func WithExtra(projects ...*project.Project) Option {
	return func(s *Service) {
		s.extra = append(s.extra, projects...)
	}
}

type Service struct {
	logger       *slog.Logger
	snapshots    SnapshotReader
	snapshotName string
	hidden       []string
	extra        []*project.Project
}

func New(logger *slog.Logger, snapshots SnapshotReader, snapshotName string, opts ...Option) *Service {
	s := &Service{
		logger:       logger,
		snapshots:    snapshots,
		snapshotName: snapshotName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the projects sorted by name from the database, or from the
// snapshot when the database fails or holds none. Hidden projects are
// dropped unless all is set.
func (s *Service) List(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	all bool,
) (tiered.Result[[]*project.Project], error) {
	source := tiered.New(s.logger,
		tiered.Tier[[]*project.Project]{
			Name: TierDatabase,
			Load: func(ctx context.Context) (projects []*project.Project, outErr error) {
				outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
					var err error
					if projects, err = ctx.ProjectStorage.List(ctx.Context()); err != nil {
						return err
					}
					if len(projects) == 0 {
						return project.ErrNoProjects
					}
					return ctx.Commit()
				})
				return
			},
		},
		tiered.Tier[[]*project.Project]{
			Name: TierSnapshot,
			Load: func(context.Context) ([]*project.Project, error) {
				var projects []*project.Project
				if err := s.snapshots.Read(s.snapshotName, &projects); err != nil {
					return nil, err
				}
				return projects, nil
			},
		},
	)

	res, err := source.Load(ctx)
	if err != nil {
		return res, err
	}

	res.Value = project.SortByName(res.Value)
	if !all {
		res.Value = project.Visible(res.Value, s.hidden)
	}
	return res, nil
}

// Refresh makes the stored projects match fetched plus the configured
// extras. The catalog publishes project.refreshed once committed.
func (s *Service) Refresh(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	fetched []*project.Project,
) (plan project.Plan, outErr error) {
	fetched = append(append([]*project.Project{}, fetched...), s.extra...)

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		catalog, err := ctx.ProjectStorage.Catalog(ctx.Context())
		if err != nil {
			return err
		}

		if plan, err = catalog.Reconcile(fetched); err != nil {
			return err
		}

		if err := ctx.ProjectStorage.Apply(ctx.Context(), plan); err != nil {
			return err
		}
		return ctx.Commit()
	})
	if outErr != nil {
		return project.Plan{}, outErr
	}

	s.logger.Info("projects refreshed",
		"added", len(plan.Added),
		"changed", len(plan.Changed),
		"removed", len(plan.Removed),
	)
	return plan, nil
}

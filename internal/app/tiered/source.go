// Package tiered loads a value from an ordered list of sources, falling
// back to the next tier whenever one fails.
package tiered

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrAllTiersFailed = errors.New("all data tiers failed")
	ErrNoTiers        = errors.New("no data tiers configured")
)

type Tier[T any] struct {
	Name string
	Load func(ctx context.Context) (T, error)
}

type Result[T any] struct {
	Value T
	Tier  string
}

type Source[T any] struct {
	logger *slog.Logger
	tiers  []Tier[T]
}

func New[T any](logger *slog.Logger, tiers ...Tier[T]) *Source[T] {
	return &Source[T]{
		logger: logger,
		tiers:  tiers,
	}
}

// Load returns the value of the first tier that succeeds. When every tier
// fails the tier errors are joined with ErrAllTiersFailed.
func (s *Source[T]) Load(ctx context.Context) (Result[T], error) {
	if len(s.tiers) == 0 {
		return Result[T]{}, ErrNoTiers
	}

	var errs []error
	for _, tier := range s.tiers {
		if err := ctx.Err(); err != nil {
			return Result[T]{}, err
		}

		v, err := tier.Load(ctx)
		if err == nil {
			return Result[T]{Value: v, Tier: tier.Name}, nil
		}

		s.logger.Warn("data tier failed, falling back", "tier", tier.Name, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", tier.Name, err))
	}

	return Result[T]{}, errors.Join(append(errs, ErrAllTiersFailed)...)
}

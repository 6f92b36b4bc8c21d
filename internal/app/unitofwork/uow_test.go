package unitofwork

import (
	"context"
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage"
	"github.com/ashwin-iyer1/portfolio_backend/internal/adapter/storage/storagetest"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/messagebus"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"io"
	"log/slog"
	"testing"
	"time"
)

type recordingBus struct {
	events []domain.Event
}

func (b *recordingBus) PublishEvents(events ...domain.Event) error {
	b.events = append(b.events, events...)
	return nil
}

type testContext struct {
	ctx    context.Context
	db     storage.DBContext
	events []domain.Event
	closed bool
}

func (c *testContext) Context() context.Context { return c.ctx }
func (c *testContext) Commit() error            { return c.db.Commit() }
func (c *testContext) Close() error {
	c.closed = true
	return nil
}
func (c *testContext) CollectEvents() []domain.Event {
	return c.events
}

func (c *testContext) insert(name string) error {
	_, err := c.db.ExecContext(c.ctx, "INSERT INTO songs (song_name, artist, songcoverlink) VALUES (?, '', '')", name)
	return err
}

func setup(t *testing.T) (*UnitOfWork[*testContext], *storage.DB, *recordingBus, **testContext) {
	t.Helper()
	db := storagetest.SetupDB(t)
	bus := &recordingBus{}
	var last *testContext
	uow := New(db, func(ctx context.Context, db storage.DBContext) (*testContext, error) {
		last = &testContext{ctx: ctx, db: db, events: []domain.Event{domain.NewEventBase("test.done", time.Time{})}}
		return last, nil
	}, bus, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return uow, db, bus, &last
}

func countSongs(t *testing.T, db *storage.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM songs").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestAtomicCommitPublishesEvents(t *testing.T) {
	uow, db, bus, last := setup(t)

	err := uow.Atomic(context.Background(), func(ctx *testContext) error {
		if err := ctx.insert("Nights"); err != nil {
			return err
		}
		return ctx.Commit()
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}

	if got := countSongs(t, db); got != 1 {
		t.Errorf("songs = %d, want 1", got)
	}
	if len(bus.events) != 1 {
		t.Errorf("events = %d, want 1", len(bus.events))
	}
	if !(*last).closed {
		t.Error("atomic context was not closed")
	}
}

func TestAtomicRollsBackOnError(t *testing.T) {
	uow, db, bus, _ := setup(t)
	failure := errors.New("failure")

	err := uow.Atomic(context.Background(), func(ctx *testContext) error {
		if err := ctx.insert("Nights"); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, ErrRollback) || !errors.Is(err, failure) {
		t.Fatalf("expected rollback wrapping the failure, got %v", err)
	}

	if got := countSongs(t, db); got != 0 {
		t.Errorf("songs = %d, want 0 after rollback", got)
	}
	if len(bus.events) != 0 {
		t.Errorf("events were published after a rollback")
	}
}

func TestAtomicWithoutCommitDiscardsWrites(t *testing.T) {
	uow, db, _, _ := setup(t)

	err := uow.Atomic(context.Background(), func(ctx *testContext) error {
		return ctx.insert("Nights")
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}
	if got := countSongs(t, db); got != 0 {
		t.Errorf("songs = %d, want uncommitted writes discarded", got)
	}
}

func TestAtomicRollsBackOnPanic(t *testing.T) {
	uow, db, _, _ := setup(t)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the panic to propagate")
			}
		}()
		_ = uow.Atomic(context.Background(), func(ctx *testContext) error {
			_ = ctx.insert("Nights")
			panic("boom")
		})
	}()

	if got := countSongs(t, db); got != 0 {
		t.Errorf("songs = %d, want 0 after panic", got)
	}
}

func TestAtomicReadOnlyAfterBusClosed(t *testing.T) {
	db := storagetest.SetupDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := messagebus.New(logger)
	bus.Close()

	uow := New(db, func(ctx context.Context, db storage.DBContext) (*testContext, error) {
		return &testContext{ctx: ctx, db: db}, nil
	}, bus, logger)

	err := uow.Atomic(context.Background(), func(ctx *testContext) error {
		return ctx.Commit()
	})
	if err != nil {
		t.Fatalf("read-only Atomic after Close failed: %v", err)
	}
}

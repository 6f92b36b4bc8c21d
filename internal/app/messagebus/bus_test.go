package messagebus

import (
	"errors"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func event(kind string) domain.Event {
	return domain.NewEventBase(kind, time.Time{})
}

func newBus() *MessageBus {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishEvents(t *testing.T) {
	bus := newBus()

	var handled atomic.Int32
	bus.Register("a", func(_ domain.Event) error {
		handled.Add(1)
		return nil
	})
	bus.Register("a", func(_ domain.Event) error {
		handled.Add(1)
		return errors.New("handler failed")
	})
	bus.Register("b", func(_ domain.Event) error {
		handled.Add(100)
		return nil
	})

	if err := bus.PublishEvents(event("a"), event("c")); err != nil {
		t.Fatalf("PublishEvents failed: %v", err)
	}
	bus.Close()

	if got := handled.Load(); got != 2 {
		t.Errorf("handled = %d, want 2", got)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	bus := newBus()

	var handled atomic.Int32
	bus.Register("a", func(_ domain.Event) error {
		panic("boom")
	})
	bus.Register("a", func(_ domain.Event) error {
		handled.Add(1)
		return nil
	})

	if err := bus.PublishEvents(event("a")); err != nil {
		t.Fatalf("PublishEvents failed: %v", err)
	}
	bus.Close()

	if got := handled.Load(); got != 1 {
		t.Errorf("handled = %d, want 1", got)
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus := newBus()
	bus.Close()

	if err := bus.PublishEvents(event("a")); !errors.Is(err, ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
}

func TestPublishNothingAfterClose(t *testing.T) {
	bus := newBus()
	bus.Close()

	if err := bus.PublishEvents(); err != nil {
		t.Fatalf("PublishEvents with no events = %v, want nil", err)
	}
}

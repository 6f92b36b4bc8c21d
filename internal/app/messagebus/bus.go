package messagebus

import (
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"log/slog"
	"sync"
)

var (
	ErrBusClosed = errors.New("message bus closed")
)

type EventHandler func(event domain.Event) error

type MessageBus struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	closed   bool
	wg       sync.WaitGroup
}

func New(logger *slog.Logger) *MessageBus {
	return &MessageBus{
		logger:   logger,
		handlers: make(map[string][]EventHandler),
	}
}

func (b *MessageBus) Register(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// PublishEvents runs every handler of every event in its own goroutine.
// Handler errors and panics are logged, never returned.
func (b *MessageBus) PublishEvents(events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	for _, event := range events {
		for _, handler := range b.handlers[event.Type()] {
			b.wg.Add(1)
			go b.handle(handler, event)
		}
	}
	return nil
}

func (b *MessageBus) handle(handler EventHandler, event domain.Event) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "type", event.Type(), "err", fmt.Errorf("%v", r))
		}
	}()

	if err := handler(event); err != nil {
		b.logger.Error("failed to handle event", "type", event.Type(), "err", err)
	}
}

// Close rejects further events and waits for in-flight handlers.
func (b *MessageBus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}

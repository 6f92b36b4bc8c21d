package dashboard

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrSuperseded = errors.New("aggregation superseded by a newer request")
)

// Loader keeps the current view model of one client. Starting a load
// cancels the one in flight; a superseded load never replaces the current
// view model.
type Loader struct {
	aggregator *Aggregator

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	current *ViewModel
	request Request
}

func NewLoader(a *Aggregator) *Loader {
	return &Loader{aggregator: a}
}

func (l *Loader) Load(ctx context.Context, req Request) (*ViewModel, error) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	defer cancel()

	vm, err := l.aggregator.Aggregate(ctx, req)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return nil, ErrSuperseded
	}
	l.cancel = nil
	if err != nil {
		return nil, err
	}

	l.current = vm
	l.request = req
	return vm, nil
}

func (l *Loader) Current() (*ViewModel, Request, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current, l.request, l.current != nil
}

// Stop cancels the load in flight, if any, and forgets the current view model.
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
	l.current = nil
}

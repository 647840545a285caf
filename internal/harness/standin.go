package harness

import (
	"sync/atomic"

	"github.com/roach88/baseline/internal/toolkit"
)

// batchInteractor wraps a real interactor and makes Start return
// immediately. Every other operation reaches the wrapped interactor.
type batchInteractor struct {
	toolkit.Interactor
	starts atomic.Int64
}

// Start counts the call and returns. Calling it repeatedly is harmless.
func (b *batchInteractor) Start() {
	b.starts.Add(1)
}

// Starts reports how many times Start was called.
func (b *batchInteractor) Starts() int {
	return int(b.starts.Load())
}

// StandIn wraps factory so every interactor it produces has a non-blocking
// Start.
func StandIn(factory toolkit.InteractorFactory) toolkit.InteractorFactory {
	return func(win *toolkit.RenderWindow) toolkit.Interactor {
		return &batchInteractor{Interactor: factory(win)}
	}
}

// IsStandIn reports whether it was produced by a StandIn factory.
func IsStandIn(it toolkit.Interactor) bool {
	_, ok := it.(*batchInteractor)
	return ok
}

// StartCount returns the number of Start calls on a stand-in, or -1 for
// any other interactor.
func StartCount(it toolkit.Interactor) int {
	if b, ok := it.(*batchInteractor); ok {
		return b.Starts()
	}
	return -1
}

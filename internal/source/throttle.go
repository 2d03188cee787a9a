package source

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/roach88/lazylist/internal/loader"
)

// Throttle limits how often the wrapped Loader is called, using a token
// bucket. Load waits for a token, so a cancelled engine stops waiting at once.
// Hooks are forwarded to the wrapped Loader.
type Throttle[T any] struct {
	inner   loader.Loader[T]
	limiter *rate.Limiter
}

// NewThrottle allows perSecond loads per second with the given burst. A
// perSecond of zero or less disables the limit.
func NewThrottle[T any](inner loader.Loader[T], perSecond float64, burst int) *Throttle[T] {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Throttle[T]{
		inner:   inner,
		limiter: rate.NewLimiter(limit, max(1, burst)),
	}
}

func (t *Throttle[T]) Load(ctx context.Context) (loader.Result[T], error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return loader.Result[T]{}, err
	}
	return t.inner.Load(ctx)
}

func (t *Throttle[T]) OnClear() {
	if h, ok := t.inner.(loader.ClearHook); ok {
		h.OnClear()
	}
}

func (t *Throttle[T]) OnLoadBegin() {
	if h, ok := t.inner.(loader.LoadBeginHook); ok {
		h.OnLoadBegin()
	}
}

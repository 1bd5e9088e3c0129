package coordinator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/api"
)

// Collection is one observable snapshot slot, such as the grid of tiles.
// Each fetch request is stamped with a new generation token and a result is
// applied only if its token is still the latest.
type Collection[T any] struct {
	name  string
	coord *Coordinator

	mu       sync.Mutex
	gen      uint64
	data     T
	hasData  bool
	inflight map[string]*flight
}

// flight is a running fetch. Duplicate requests for the same source adopt
// the newest token instead of starting another call.
type flight struct {
	token uint64
}

// NewCollection creates a collection delivering its snapshots through c
func NewCollection[T any](c *Coordinator, name string) *Collection[T] {
	return &Collection[T]{
		name:     name,
		coord:    c,
		inflight: make(map[string]*flight),
	}
}

// Name returns the collection name carried by its events
func (col *Collection[T]) Name() string {
	return col.name
}

// BeginFetch requests a new snapshot from source and returns the request's
// token. Every older request becomes stale. If a fetch for the same source
// is already running, no new call is made and the running one will deliver
// under the returned token.
func (col *Collection[T]) BeginFetch(source string, fetch func(ctx context.Context) (T, error)) uint64 {
	col.mu.Lock()
	col.gen++
	token := col.gen
	if f, ok := col.inflight[source]; ok {
		f.token = token
		col.mu.Unlock()
		col.coord.log.Debug("Joined in-flight fetch",
			zap.String("collection", col.name), zap.String("source", source), zap.Uint64("token", token))
		return token
	}
	f := &flight{token: token}
	col.inflight[source] = f
	col.mu.Unlock()

	ok := col.coord.run(func(ctx context.Context) {
		data, err := fetch(ctx)
		col.complete(source, f, data, err)
	})
	if !ok {
		col.mu.Lock()
		delete(col.inflight, source)
		latest := f.token
		col.mu.Unlock()
		col.coord.log.Warn("Worker queue full, fetch rejected",
			zap.String("collection", col.name), zap.String("source", source))
		go col.coord.emit(Event{
			Kind:       EventNotice,
			Collection: col.name,
			Token:      latest,
			Message:    "Too many requests in flight, try again",
		})
	}
	return token
}

func (col *Collection[T]) complete(source string, f *flight, data T, err error) {
	col.mu.Lock()
	delete(col.inflight, source)
	token := f.token
	current := token == col.gen
	if current && err == nil {
		col.data = data
		col.hasData = true
	}
	col.mu.Unlock()

	if !current {
		col.coord.log.Debug("Discarding stale fetch",
			zap.String("collection", col.name), zap.String("source", source), zap.Uint64("token", token))
		return
	}
	if err != nil {
		col.coord.emit(Event{
			Kind:       EventNotice,
			Collection: col.name,
			Token:      token,
			Err:        err,
			Message:    api.Describe(err),
		})
		return
	}
	col.coord.emit(Event{
		Kind:       EventSnapshot,
		Collection: col.name,
		Token:      token,
		Data:       data,
	})
}

// Invalidate makes every outstanding request stale without starting a new
// one.
func (col *Collection[T]) Invalidate() uint64 {
	col.mu.Lock()
	defer col.mu.Unlock()
	col.gen++
	return col.gen
}

// Current returns the latest issued token
func (col *Collection[T]) Current() uint64 {
	col.mu.Lock()
	defer col.mu.Unlock()
	return col.gen
}

// IsCurrent reports whether token is still the latest one issued
func (col *Collection[T]) IsCurrent(token uint64) bool {
	return col.Current() == token
}

// Snapshot returns the last applied data
func (col *Collection[T]) Snapshot() (T, bool) {
	col.mu.Lock()
	defer col.mu.Unlock()
	return col.data, col.hasData
}

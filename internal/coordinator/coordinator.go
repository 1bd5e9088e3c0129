// Package coordinator runs bridge I/O off the UI thread and decides which
// results are still wanted when they arrive.
//
// Fetch results are applied to a Collection only if no newer request for
// that Collection was made in the meantime. Commands are limited to one in
// flight per item; extra commands for a busy item are dropped. Every outcome
// is delivered on a single Events channel for the UI to consume.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/api"
	"github.com/angristan/hue-panel/internal/logging"
	"github.com/angristan/hue-panel/internal/models"
)

// EventKind describes what an Event carries
type EventKind int

const (
	// EventSnapshot carries a fresh collection snapshot in Data
	EventSnapshot EventKind = iota
	// EventCommandDone reports a finished command for Key
	EventCommandDone
	// EventNotice carries a transient user-facing message
	EventNotice
)

// ErrDropped reports a command that was never sent because the item still
// had one in flight
var ErrDropped = errors.New("previous command still running, change not sent")

// Event is a completed unit of background work
type Event struct {
	Kind       EventKind
	Collection string
	Token      uint64
	Data       any
	Key        models.ItemKey
	Err        error
	Message    string
}

// Coordinator owns the worker pool and the event channel
type Coordinator struct {
	pool          *Pool
	busy          BusySet
	log           *zap.Logger
	taskTimeout   time.Duration
	debounceDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	events chan Event

	debounceMu sync.Mutex
	debouncers map[models.ItemKey]*Debouncer
}

type settings struct {
	workers       int
	queue         int
	buffer        int
	taskTimeout   time.Duration
	debounceDelay time.Duration
	logger        *zap.Logger
}

// Option configures a Coordinator
type Option func(*settings)

// WithWorkers sets the number of worker goroutines
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

// WithQueueSize sets how many tasks may wait for a worker
func WithQueueSize(n int) Option {
	return func(s *settings) { s.queue = n }
}

// WithTaskTimeout bounds every fetch and command
func WithTaskTimeout(d time.Duration) Option {
	return func(s *settings) { s.taskTimeout = d }
}

// WithDebounceDelay sets the quiet period used by Debouncer
func WithDebounceDelay(d time.Duration) Option {
	return func(s *settings) { s.debounceDelay = d }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New starts a coordinator
func New(opts ...Option) *Coordinator {
	s := settings{
		workers:       4,
		queue:         64,
		buffer:        64,
		taskTimeout:   5 * time.Second,
		debounceDelay: DefaultDebounceDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logging.Named("coordinator")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		pool:          NewPool(s.workers, s.queue),
		log:           s.logger,
		taskTimeout:   s.taskTimeout,
		debounceDelay: s.debounceDelay,
		ctx:           ctx,
		cancel:        cancel,
		events:        make(chan Event, s.buffer),
		debouncers:    make(map[models.ItemKey]*Debouncer),
	}
}

// Events returns the channel on which all results are delivered. It is
// closed by Close.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// emit delivers ev unless the coordinator is closing
func (c *Coordinator) emit(ev Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

// Notify queues a transient message for the UI
func (c *Coordinator) Notify(msg string) {
	go c.emit(Event{Kind: EventNotice, Message: msg})
}

// run submits fn with a bounded context. It returns false if the pool
// rejected it.
func (c *Coordinator) run(fn func(ctx context.Context)) bool {
	return c.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.taskTimeout)
		defer cancel()
		fn(ctx)
	})
}

// Busy reports whether key has a command in flight
func (c *Coordinator) Busy(key models.ItemKey) bool {
	return c.busy.Busy(key)
}

// Dispatch runs cmd for key in the background unless a command for key is
// already in flight, in which case it returns false and cmd is dropped.
// Completion is reported as an EventCommandDone.
func (c *Coordinator) Dispatch(key models.ItemKey, cmd func(ctx context.Context) error) bool {
	if !c.busy.TryAcquire(key) {
		c.log.Debug("Dropping command for busy item", zap.Stringer("key", key))
		return false
	}

	ok := c.run(func(ctx context.Context) {
		err := cmd(ctx)
		c.busy.Release(key)

		ev := Event{Kind: EventCommandDone, Key: key, Err: err}
		if err != nil {
			ev.Message = api.Describe(err)
			c.log.Debug("Command failed", zap.Stringer("key", key), zap.Error(err))
		}
		c.emit(ev)
	})
	if !ok {
		c.busy.Release(key)
		c.log.Warn("Worker queue full, command rejected", zap.Stringer("key", key))
		return false
	}
	return true
}

// Reject reports a command for key as failed with err without running it
func (c *Coordinator) Reject(key models.ItemKey, err error) {
	go c.emit(Event{Kind: EventCommandDone, Key: key, Err: err, Message: api.Describe(err)})
}

// Debouncer returns the debouncer for key, creating it with commit on first
// use.
func (c *Coordinator) Debouncer(key models.ItemKey, commit func(value int)) *Debouncer {
	c.debounceMu.Lock()
	defer c.debounceMu.Unlock()
	if d, ok := c.debouncers[key]; ok {
		return d
	}
	d := NewDebouncer(c.debounceDelay, commit)
	c.debouncers[key] = d
	return d
}

// Close stops background work, cancels in-flight requests and closes the
// event channel.
func (c *Coordinator) Close() {
	c.debounceMu.Lock()
	for _, d := range c.debouncers {
		d.Stop()
	}
	c.debounceMu.Unlock()

	c.cancel()
	c.pool.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

package screens

import (
	"sync"
	"time"

	"github.com/angristan/hue-panel/internal/models"
)

const pendingOpExpiry = 5 * time.Second

// Direction represents the direction of a change
type Direction int

const (
	DirExact Direction = iota // Exact match required (for booleans)
	DirUp                     // Value is increasing
	DirDown                   // Value is decreasing
)

// Field is the tile property a pending operation targets
type Field int

const (
	FieldOn Field = iota
	FieldBrightness
)

// PendingOp is a commanded value we're waiting for the bridge to report
type PendingOp struct {
	Target    int
	Direction Direction
	ExpiresAt time.Time
}

type pendingKey struct {
	item  models.ItemKey
	field Field
}

// PendingTracker keeps optimistic values alive while a snapshot that was
// fetched before the bridge applied a command is still arriving.
type PendingTracker struct {
	mu  sync.Mutex
	ops map[pendingKey]*PendingOp
	now func() time.Time
}

// NewPendingTracker creates a new pending operations tracker
func NewPendingTracker() *PendingTracker {
	return &PendingTracker{
		ops: make(map[pendingKey]*PendingOp),
		now: time.Now,
	}
}

// Add registers a pending operation for an item
func (t *PendingTracker) Add(key models.ItemKey, field Field, target int, dir Direction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ops[pendingKey{key, field}] = &PendingOp{
		Target:    target,
		Direction: dir,
		ExpiresAt: t.now().Add(pendingOpExpiry),
	}
}

// Forget drops every pending operation for key, e.g. after a failed command
func (t *PendingTracker) Forget(key models.ItemKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.ops, pendingKey{key, FieldOn})
	delete(t.ops, pendingKey{key, FieldBrightness})
}

// Len returns the number of live pending operations
func (t *PendingTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ops)
}

// resolve returns the value to display for a reported value. An op is
// cleared once the bridge reports its target, or a value past it (an
// external change), or when it expires.
func (t *PendingTracker) resolve(key models.ItemKey, field Field, reported int) int {
	pk := pendingKey{key, field}
	op, exists := t.ops[pk]
	if !exists {
		return reported
	}

	if t.now().After(op.ExpiresAt) {
		delete(t.ops, pk)
		return reported
	}

	switch {
	case reported == op.Target:
		delete(t.ops, pk)
		return reported
	case op.Direction == DirUp && reported > op.Target,
		op.Direction == DirDown && reported < op.Target:
		delete(t.ops, pk)
		return reported
	}
	return op.Target
}

// Reconcile overlays pending values onto a freshly fetched item
func (t *PendingTracker) Reconcile(key models.ItemKey, item *models.ItemState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	item.On = t.resolve(key, FieldOn, boolToInt(item.On)) == 1
	item.Brightness = t.resolve(key, FieldBrightness, item.Brightness)
}

// Cleanup removes expired pending operations
func (t *PendingTracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, op := range t.ops {
		if now.After(op.ExpiresAt) {
			delete(t.ops, key)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package coordinator

import (
	"sync"
	"sync/atomic"

	"github.com/angristan/hue-panel/internal/models"
)

// BusySet tracks which items have a command in flight
type BusySet struct {
	flags sync.Map // models.ItemKey -> *atomic.Bool
}

func (b *BusySet) flag(key models.ItemKey) *atomic.Bool {
	v, _ := b.flags.LoadOrStore(key, new(atomic.Bool))
	return v.(*atomic.Bool)
}

// TryAcquire marks key busy. It returns false if it already was
func (b *BusySet) TryAcquire(key models.ItemKey) bool {
	return b.flag(key).CompareAndSwap(false, true)
}

// Release clears the busy mark for key
func (b *BusySet) Release(key models.ItemKey) {
	b.flag(key).Store(false)
}

// Busy reports whether key has a command in flight
func (b *BusySet) Busy(key models.ItemKey) bool {
	v, ok := b.flags.Load(key)
	return ok && v.(*atomic.Bool).Load()
}

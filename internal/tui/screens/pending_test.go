package screens

import (
	"testing"
	"time"

	"github.com/angristan/hue-panel/internal/models"
)

func reconcile(tracker *PendingTracker, key models.ItemKey, on bool, bri int) models.ItemState {
	item := models.ItemState{ID: key.ID, On: on, Brightness: bri}
	tracker.Reconcile(key, &item)
	return item
}

func TestPendingTracker_ExactMatch(t *testing.T) {
	tracker := NewPendingTracker()
	key := models.LightKey(1)

	tracker.Add(key, FieldOn, 1, DirExact)

	// A stale snapshot still reporting off keeps the commanded value
	if got := reconcile(tracker, key, false, 0); !got.On {
		t.Error("Expected pending on=true to override stale off")
	}

	// The bridge confirms, the op is cleared
	if got := reconcile(tracker, key, true, 0); !got.On {
		t.Error("Expected confirmed on=true")
	}
	if tracker.Len() != 0 {
		t.Errorf("Expected op cleared after confirmation, %d left", tracker.Len())
	}

	// Later snapshots are taken as-is
	if got := reconcile(tracker, key, false, 0); got.On {
		t.Error("Expected external off to apply once op is cleared")
	}
}

func TestPendingTracker_DirUp_IntermediateValues(t *testing.T) {
	tracker := NewPendingTracker()
	key := models.LightKey(1)

	// Brightness increasing from 50 to 80
	tracker.Add(key, FieldBrightness, 80, DirUp)

	for _, reported := range []int{50, 55, 70} {
		if got := reconcile(tracker, key, true, reported); got.Brightness != 80 {
			t.Errorf("reported %d: expected 80, got %d", reported, got.Brightness)
		}
	}

	if got := reconcile(tracker, key, true, 80); got.Brightness != 80 {
		t.Errorf("Expected target value 80, got %d", got.Brightness)
	}
	if got := reconcile(tracker, key, true, 85); got.Brightness != 85 {
		t.Errorf("Expected 85 after target reached, got %d", got.Brightness)
	}
}

func TestPendingTracker_DirUp_ExternalIncrease(t *testing.T) {
	tracker := NewPendingTracker()
	key := models.LightKey(1)

	tracker.Add(key, FieldBrightness, 60, DirUp)

	if got := reconcile(tracker, key, true, 75); got.Brightness != 75 {
		t.Errorf("Expected external value 75 to win, got %d", got.Brightness)
	}
	if tracker.Len() != 0 {
		t.Error("Expected op cleared by external change")
	}
}

func TestPendingTracker_DirDown(t *testing.T) {
	tracker := NewPendingTracker()
	key := models.LightKey(1)

	tracker.Add(key, FieldBrightness, 40, DirDown)

	if got := reconcile(tracker, key, true, 70); got.Brightness != 40 {
		t.Errorf("Expected 40 while on the way down, got %d", got.Brightness)
	}
	if got := reconcile(tracker, key, true, 20); got.Brightness != 20 {
		t.Errorf("Expected external 20 to win, got %d", got.Brightness)
	}
}

func TestPendingTracker_MultipleItems(t *testing.T) {
	tracker := NewPendingTracker()

	tracker.Add(models.LightKey(1), FieldOn, 1, DirExact)
	tracker.Add(models.RoomKey(1), FieldOn, 0, DirExact)

	if got := reconcile(tracker, models.LightKey(1), false, 0); !got.On {
		t.Error("Expected light 1 override")
	}
	if got := reconcile(tracker, models.RoomKey(1), true, 50); got.On {
		t.Error("Expected room 1 override, rooms and lights share IDs but not keys")
	}
	if got := reconcile(tracker, models.LightKey(2), false, 0); got.On {
		t.Error("Expected light 2 untouched")
	}
}

func TestPendingTracker_Forget(t *testing.T) {
	tracker := NewPendingTracker()
	key := models.LightKey(3)

	tracker.Add(key, FieldOn, 1, DirExact)
	tracker.Add(key, FieldBrightness, 90, DirUp)
	tracker.Forget(key)

	if got := reconcile(tracker, key, false, 10); got.On || got.Brightness != 10 {
		t.Errorf("Expected reported state after Forget, got %+v", got)
	}
}

func TestPendingTracker_Expiry(t *testing.T) {
	tracker := NewPendingTracker()
	key := models.LightKey(1)
	now := time.Now()
	tracker.now = func() time.Time { return now }

	tracker.Add(key, FieldOn, 1, DirExact)

	now = now.Add(pendingOpExpiry + time.Second)
	if got := reconcile(tracker, key, false, 0); got.On {
		t.Error("Expected expired op to be ignored")
	}

	tracker.Add(key, FieldOn, 1, DirExact)
	now = now.Add(pendingOpExpiry + time.Second)
	tracker.Cleanup()
	if tracker.Len() != 0 {
		t.Errorf("Expected Cleanup to drop expired ops, %d left", tracker.Len())
	}
}

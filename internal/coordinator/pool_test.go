package coordinator

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(2, 8)
	defer p.Close()

	var n atomic.Int32
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		if !p.Submit(func() { n.Add(1); done <- struct{}{} }) {
			t.Fatal("Submit rejected a task")
		}
	}
	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task did not run")
		}
	}
	if n.Load() != 4 {
		t.Errorf("expected 4 runs, got %d", n.Load())
	}
}

func TestPoolRejectsWhenFull(t *testing.T) {
	p := NewPool(1, 1)
	block := make(chan struct{})
	started := make(chan struct{})

	p.Submit(func() { close(started); <-block })
	<-started
	if !p.Submit(func() {}) {
		t.Fatal("queue slot should accept one task")
	}
	if p.Submit(func() {}) {
		t.Error("expected rejection when queue is full")
	}

	close(block)
	p.Close()
	if p.Submit(func() {}) {
		t.Error("expected rejection after Close")
	}
}

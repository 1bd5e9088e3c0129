package coordinator

import "sync"

// Pool runs tasks on a fixed set of worker goroutines
type Pool struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool starts workers goroutines reading from a queue of the given size
func NewPool(workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	p := &Pool{
		tasks: make(chan func(), queue),
		quit:  make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit queues task without blocking. It returns false when the queue is
// full or the pool is closed.
func (p *Pool) Submit(task func()) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Close stops the workers and waits for running tasks to return. Queued tasks
// that have not started are discarded.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

package engine

import (
	"gopkg.in/tomb.v2"

	"nexusbook/domain"
	"nexusbook/matching"
)

// matchTask is one unit of work queued onto the worker pool: match order
// against state's book and deliver the result on reply. reply is always
// buffered (size 1) so the worker never blocks handing the result back if
// Submit's caller has already moved on.
type matchTask struct {
	order *domain.Order
	state *bookState
	reply chan matching.Result
}

// workerPool is a fixed pool of goroutines draining a shared task channel,
// grounded on saiputravu-Exchange's internal/worker.go WorkerPool. Unlike
// that pool, handle never returns an error that should respawn the
// worker — matchWithRecovery contains any panic from a single task so one
// bad submission can never take a worker goroutine down.
type workerPool struct {
	size  int
	tasks chan *matchTask
}

func newWorkerPool(size, queueDepth int) *workerPool {
	if size <= 0 {
		size = 1
	}
	if queueDepth <= 0 {
		queueDepth = 1024
	}
	return &workerPool{
		size:  size,
		tasks: make(chan *matchTask, queueDepth),
	}
}

// start spawns p.size goroutines under t, each running handle against
// tasks pulled off p.tasks until t is dying.
func (p *workerPool) start(t *tomb.Tomb, handle func(*matchTask)) {
	for i := 0; i < p.size; i++ {
		t.Go(func() error {
			return p.loop(t, handle)
		})
	}
}

func (p *workerPool) loop(t *tomb.Tomb, handle func(*matchTask)) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			handle(task)
		}
	}
}

// submit enqueues task. Called from Engine.Submit, which blocks on
// task.reply afterward.
func (p *workerPool) submit(task *matchTask) {
	p.tasks <- task
}

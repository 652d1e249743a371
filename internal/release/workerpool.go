package release

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

type Task func() error

// WorkerPool runs tasks on a fixed number of goroutines. The task channel is
// unbuffered, so a task accepted by AddTask is always executed.
type WorkerPool struct {
	tasks chan Task
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		tasks: make(chan Task),
		done:  make(chan struct{}),
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.done:
			return
		case task := <-wp.tasks:
			if err := task(); err != nil {
				zap.L().Error("Task execution failed", zap.Error(err))
			}
		}
	}
}

func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.done:
		return ErrPoolClosed
	case wp.tasks <- task:
		return nil
	}
}

// Close stops accepting tasks and waits for running ones to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() { close(wp.done) })
	wp.wg.Wait()
}

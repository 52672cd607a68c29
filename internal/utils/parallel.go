package utils

import (
	"sync"
)

// ParallelTask is a unit of work producing one result.
type ParallelTask[R any] func() (R, error)

// RunParallelTasks executes tasks concurrently and returns results and
// errors in task order.
func RunParallelTasks[R any](tasks []ParallelTask[R]) ([]R, []error) {
	var wg sync.WaitGroup
	results := make([]R, len(tasks))
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(index int, t ParallelTask[R]) {
			defer wg.Done()
			results[index], errs[index] = t()
		}(i, task)
	}

	wg.Wait()
	return results, errs
}

// WorkerPool runs tasks on a fixed number of goroutines.
type WorkerPool struct {
	maxWorkers int
	taskChan   chan func()
	wg         sync.WaitGroup
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	pool := &WorkerPool{
		maxWorkers: maxWorkers,
		taskChan:   make(chan func(), maxWorkers*2),
	}

	for i := 0; i < maxWorkers; i++ {
		go pool.worker()
	}

	return pool
}

func (p *WorkerPool) worker() {
	for task := range p.taskChan {
		task()
		p.wg.Done()
	}
}

// AddTask blocks while the queue is full.
func (p *WorkerPool) AddTask(task func()) {
	p.wg.Add(1)
	p.taskChan <- task
}

// Wait waits for all tasks to complete
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Close stops the workers. No task may be added afterwards.
func (p *WorkerPool) Close() {
	close(p.taskChan)
}

// Map applies fn to every item on a pool of at most workers goroutines and
// returns the results in input order.
func Map[T, R any](items []T, workers int, fn func(T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}
	if workers > len(items) {
		workers = len(items)
	}

	pool := NewWorkerPool(workers)
	defer pool.Close()
	for i := range items {
		i := i
		pool.AddTask(func() {
			results[i], errs[i] = fn(items[i])
		})
	}
	pool.Wait()
	return results, errs
}

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is one run of a periodic job. An error is logged and the job keeps
// its schedule.
type Task func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	task     Task
}

// Worker runs named periodic tasks, each on its own ticker, until its
// context is cancelled. The dashboard uses one for the display tick and one
// for the overrun blink.
type Worker struct {
	jobs []job
}

// NewWorker creates a worker with no tasks.
func NewWorker() *Worker {
	return &Worker{}
}

// Every registers task to run once per interval. It must be called before Start.
func (w *Worker) Every(name string, interval time.Duration, task Task) *Worker {
	w.jobs = append(w.jobs, job{name: name, interval: interval, task: task})
	return w
}

// Start runs every task immediately and then on its interval. It returns
// once ctx is cancelled and every task has stopped.
func (w *Worker) Start(ctx context.Context) {
	log.Ctx(ctx).Debug().Int("tasks", len(w.jobs)).Msg("worker started")

	var wg sync.WaitGroup
	for _, j := range w.jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			w.loop(ctx, j)
		}(j)
	}
	wg.Wait()

	log.Ctx(ctx).Debug().Msg("worker stopped")
}

// loop is the ticker loop of a single task. A run is never started while the
// previous one is still going; missed ticks are dropped.
func (w *Worker) loop(ctx context.Context, j job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		w.runOnce(ctx, j)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) runOnce(ctx context.Context, j job) {
	if ctx.Err() != nil {
		return
	}
	if err := j.task(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("task", j.name).Msg("periodic task failed")
	}
}

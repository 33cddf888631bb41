package work

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/sentinela-io/sentinela/server/cron"
	"github.com/sentinela-io/sentinela/server/models"
)

// WorkerPoolAdapter ties a cron scheduler to a pool of db-backed
// workers: callers enqueue jobs (once or periodically) & the workers
// claim and process them with bounded retries.
type WorkerPoolAdapter struct {
	cronScheduler *gocron.Scheduler
	workers       []*worker
	requeuer      *requeuer
	started       bool
}

func NewWorkerAdapter(timeZoneArg string) *WorkerPoolAdapter {
	adapter := &WorkerPoolAdapter{
		cronScheduler: cron.NewCronScheduler(timeZoneArg),
		requeuer:      newRequeuer(),
	}

	for i := 0; i < MAX_CONCURRENCY; i++ {
		adapter.workers = append(adapter.workers, newWorker([]int64{0, 10, 100, 120}))
	}

	return adapter
}

// Start starts the cron scheduler, the workers & the stuck-job requeuer
func (adapter *WorkerPoolAdapter) Start() {
	if adapter.started {
		return
	}
	adapter.started = true

	logg.Info("Starting cron scheduler & worker pool")
	adapter.cronScheduler.StartAsync()
	adapter.requeuer.start()

	for _, w := range adapter.workers {
		w.start()
	}
}

// Stop stops the cron scheduler & drains the workers
func (adapter *WorkerPoolAdapter) Stop() {
	if !adapter.started {
		return
	}

	logg.Info("Stopping cron scheduler & worker pool")
	adapter.cronScheduler.Stop()

	wg := sync.WaitGroup{}
	for _, w := range adapter.workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			w.stop()
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		adapter.requeuer.stop()
	}()

	wg.Wait()
	adapter.started = false
}

// Register binds a name to a job handler for all workers in the pool
func (adapter *WorkerPoolAdapter) Register(name string, handler Handler) error {
	for _, w := range adapter.workers {
		if err := w.registerHandler(name, handler); err != nil {
			return err
		}
	}

	return nil
}

// Perform enqueues a job to be executed as soon as a worker is available
func (adapter *WorkerPoolAdapter) Perform(job JobParams) error {
	logg.Infof("Enqueuing job: %v", job.Name)

	err := adapter.enqueue(job)
	if errors.Is(err, models.ErrDuplicateJob) {
		logg.Warnf("Duplicate job already in queue for: %v", job.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("error enqueuing job %v: %v", job.Name, err)
	}

	return nil
}

// PeriodicallyPerform enqueues the job on the schedule described by
// 'cronExpression'
func (adapter *WorkerPoolAdapter) PeriodicallyPerform(cronExpression string, job JobParams) error {
	_, err := adapter.cronScheduler.Cron(cronExpression).Tag(job.Name).
		Do(func(job JobParams) {
			if err := adapter.Perform(job); err != nil {
				logg.Error(err)
			}
		}, job)

	return err
}

func (adapter *WorkerPoolAdapter) enqueue(job JobParams) error {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return fmt.Errorf("both a name & handler is required for a job")
	}

	argsAsJson, err := json.Marshal(job.Args)
	if err != nil {
		return err
	}

	if job.Unique {
		return models.CreateUniqueJobByName(job.Name, job.Handler, string(argsAsJson))
	}

	return models.CreateJob(job.Name, job.Handler, string(argsAsJson))
}

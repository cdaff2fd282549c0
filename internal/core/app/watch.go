package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"usetidy/internal/core/ports"
	"usetidy/internal/core/watcher"
	"usetidy/internal/data/queue"
	"usetidy/internal/shared/util"
)

const watchQueueCapacity = 64

// StartWatcher begins watch mode: debounced filesystem events feed the job
// queue, and a worker rewrites the changed files, rate limited between
// batches so editor-driven bursts cannot monopolize the process.
func (a *App) StartWatcher() error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	if a.activeWatcher != nil {
		return fmt.Errorf("watcher already running")
	}

	w, err := watcher.NewWatcher(
		a.Paths.ProjectRoot,
		a.Config.Scan.Include,
		a.Config.Scan.Exclude,
		a.Config.Watch.Debounce,
		a.enqueueChanges,
	)
	if err != nil {
		return err
	}

	a.jobs = queue.NewMemoryQueue(watchQueueCapacity)
	a.limiter = util.NewLimiter(a.Config.Watch.Rate, a.Config.Watch.Burst)

	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.workerDone = make(chan struct{})
	go a.runWatchWorker(ctx)

	if err := w.Watch(a.scanRoots(nil)); err != nil {
		stopErr := a.stopWatcherLocked(context.Background())
		if closeErr := w.Close(); stopErr == nil {
			stopErr = closeErr
		}
		if stopErr != nil {
			a.logger.Warn("failed to tear down watcher after start error", "error", stopErr)
		}
		return err
	}

	a.activeWatcher = w
	return nil
}

func (a *App) watcherRunning() bool {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	return a.activeWatcher != nil
}

// SetWatchDebounce adjusts the debounce window of a running watcher. It is
// a no-op while no watcher is active.
func (a *App) SetWatchDebounce(d time.Duration) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	if a.activeWatcher != nil {
		a.activeWatcher.SetDebounce(d)
	}
}

func (a *App) stopWatcher(ctx context.Context) error {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	return a.stopWatcherLocked(ctx)
}

func (a *App) stopWatcherLocked(ctx context.Context) error {
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			return err
		}
		a.activeWatcher = nil
	}
	if a.workerCancel != nil {
		a.workerCancel()
		a.workerCancel = nil
	}
	if a.workerDone != nil {
		select {
		case <-a.workerDone:
		case <-ctx.Done():
			return ctx.Err()
		}
		a.workerDone = nil
	}
	if a.jobs != nil {
		if err := a.jobs.Close(); err != nil {
			return err
		}
		a.jobs = nil
	}
	a.limiter = nil
	return nil
}

// primeWatcher tells a running watcher about content we are about to write
// so our own rewrite does not come back as a change event.
func (a *App) primeWatcher(path string, content []byte) {
	a.watchMu.Lock()
	w := a.activeWatcher
	a.watchMu.Unlock()
	if w != nil {
		w.Prime(path, content)
	}
}

// enqueueChanges is the watcher callback. It never blocks the watcher
// goroutine: when the queue is full the batch is organized synchronously
// on the callback goroutine instead of being lost.
func (a *App) enqueueChanges(paths []string) {
	a.watchMu.Lock()
	jobs := a.jobs
	a.watchMu.Unlock()
	if jobs == nil {
		return
	}

	job := ports.OrganizeJob{Paths: paths, Trigger: "fs"}
	if jobs.Enqueue(job) == ports.EnqueueDropped {
		a.logger.Warn("watch queue full, organizing synchronously", "paths", len(paths))
		a.processWatchJob(context.Background(), job)
	}
}

func (a *App) runWatchWorker(ctx context.Context) {
	defer close(a.workerDone)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := a.jobs.DequeueBatch(ctx, watchQueueCapacity, 200*time.Millisecond)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil && !errors.Is(err, io.EOF) {
			a.logger.Warn("watch queue dequeue failed", "error", err)
			continue
		}
		if len(batch) == 0 {
			if errors.Is(err, io.EOF) {
				return
			}
			continue
		}

		if err := a.limiter.Wait(ctx, 1); err != nil {
			return
		}
		a.processWatchJob(ctx, mergeJobs(batch))
	}
}

// mergeJobs collapses a dequeued batch into one job with deduplicated
// paths, so a file saved twice in quick succession is organized once.
func mergeJobs(batch []ports.OrganizeJob) ports.OrganizeJob {
	merged := ports.OrganizeJob{Trigger: "fs"}
	seen := make(map[string]bool)
	for _, job := range batch {
		if job.Trigger != "" {
			merged.Trigger = job.Trigger
		}
		for _, p := range job.Paths {
			if !seen[p] {
				seen[p] = true
				merged.Paths = append(merged.Paths, p)
			}
		}
	}
	sort.Strings(merged.Paths)
	return merged
}

func (a *App) processWatchJob(ctx context.Context, job ports.OrganizeJob) {
	// Files can vanish between the event and the run.
	paths := make([]string, 0, len(job.Paths))
	for _, p := range job.Paths {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return
	}

	res, err := a.runOrganize(ctx, paths, a.ApplyOnWatch, "watch")
	if err != nil {
		a.logger.Warn("watch run failed", "error", err)
		return
	}

	update := ports.WatchUpdate{
		Timestamp: time.Now().UTC(),
		Trigger:   job.Trigger,
		Result:    res,
	}
	a.setLastUpdate(update)
	a.emitUpdate(update)

	if a.Config.UI.Alerts.Beep && (res.FilesFailed > 0 || res.ParseErrors > 0) {
		fmt.Print("\a")
	}
}

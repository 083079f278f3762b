package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
)

// SchedulerKind selects the worker-pool sizing rules
type SchedulerKind string

const (
	SchedulerDocuments SchedulerKind = "documents"
	SchedulerVideos    SchedulerKind = "videos"
)

// RunStats aggregates the outcome of one scheduler run
type RunStats struct {
	Total      int
	Completed  int
	Failed     int
	Skipped    int
	TotalBytes int64
	Elapsed    time.Duration
}

// AverageThroughput returns the aggregate transfer rate across all workers
// in bytes per wall-clock second.
func (s RunStats) AverageThroughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalBytes) / s.Elapsed.Seconds()
}

// ProgressSummary is a live snapshot of a running scheduler. Throughput
// covers only tasks currently downloading; finished tasks do not inflate
// the instantaneous figure.
type ProgressSummary struct {
	Total           int     `json:"total"`
	Done            int     `json:"done"`
	Active          int     `json:"active"`
	BytesDownloaded int64   `json:"bytes_downloaded"`
	TotalBytes      int64   `json:"total_bytes"`
	Throughput      float64 `json:"throughput_bytes_per_sec"`
}

// TaskDoneFunc observes each task reaching a terminal state. It runs on the
// worker goroutine that finished the task, so implementations must be safe
// for concurrent calls.
type TaskDoneFunc func(task *domain.DownloadTask, elapsed time.Duration)

// Scheduler runs queued download tasks through a bounded worker pool. Each
// scheduler owns its tasks for the duration of one RunAll; a failed task
// never blocks or aborts its siblings.
type Scheduler struct {
	kind       SchedulerKind
	workers    int
	maxRetries int
	retryDelay time.Duration
	fetcher    domain.Fetcher
	logger     *zap.Logger
	onTaskDone TaskDoneFunc

	mu      sync.Mutex
	tasks   []*domain.DownloadTask
	running []*domain.DownloadTask
}

// NewScheduler creates a scheduler with the worker count clamped to the
// bounds of its kind.
func NewScheduler(kind SchedulerKind, workers, maxRetries int, fetcher domain.Fetcher, log *zap.Logger) *Scheduler {
	max := domain.MaxDocumentWorkers
	if kind == SchedulerVideos {
		max = domain.MaxVideoWorkers
	}
	if workers < 1 {
		workers = 1
	}
	if workers > max {
		log.Warn("worker count clamped",
			zap.String("kind", string(kind)),
			zap.Int("requested", workers),
			zap.Int("max", max))
		workers = max
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Scheduler{
		kind:       kind,
		workers:    workers,
		maxRetries: maxRetries,
		fetcher:    fetcher,
		logger:     log,
	}
}

// SetRetryDelay sets the pause between retry attempts
func (s *Scheduler) SetRetryDelay(d time.Duration) {
	s.retryDelay = d
}

// Workers returns the effective worker count after clamping
func (s *Scheduler) Workers() int {
	return s.workers
}

// OnTaskDone registers the terminal-state observer. Must be set before
// RunAll.
func (s *Scheduler) OnTaskDone(fn TaskDoneFunc) {
	s.onTaskDone = fn
}

// AddTask queues a task for the next run
func (s *Scheduler) AddTask(task *domain.DownloadTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Tasks returns snapshots of every queued and in-flight task
func (s *Scheduler) Tasks() []domain.TaskView {
	s.mu.Lock()
	tasks := make([]*domain.DownloadTask, 0, len(s.running)+len(s.tasks))
	tasks = append(tasks, s.running...)
	tasks = append(tasks, s.tasks...)
	s.mu.Unlock()

	views := make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, t.Snapshot())
	}
	return views
}

// Progress returns a live summary of the current run
func (s *Scheduler) Progress() ProgressSummary {
	var summary ProgressSummary
	for _, v := range s.Tasks() {
		summary.Total++
		summary.BytesDownloaded += v.BytesDownloaded
		summary.TotalBytes += v.TotalBytes
		switch v.Status {
		case domain.TaskDownloading:
			summary.Active++
			summary.Throughput += v.Speed()
		case domain.TaskCompleted, domain.TaskFailed, domain.TaskSkipped:
			summary.Done++
		}
	}
	return summary
}

// RunAll executes every queued task and blocks until all reach a terminal
// state. The queue is drained afterwards so the scheduler can be reused for
// the next lesson.
func (s *Scheduler) RunAll(ctx context.Context) RunStats {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.running = tasks
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = nil
		s.mu.Unlock()
	}()

	start := time.Now()
	stats := RunStats{Total: len(tasks)}
	if len(tasks) == 0 {
		return stats
	}

	queue := make(chan *domain.DownloadTask)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				s.runTask(ctx, task)
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, task := range tasks {
			select {
			case queue <- task:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	for _, task := range tasks {
		view := task.Snapshot()
		switch view.Status {
		case domain.TaskCompleted:
			stats.Completed++
			stats.TotalBytes += view.BytesDownloaded
		case domain.TaskSkipped:
			stats.Skipped++
			stats.TotalBytes += view.BytesDownloaded
		case domain.TaskFailed:
			stats.Failed++
		default:
			// never dispatched, context cancelled
			stats.Failed++
		}
	}
	stats.Elapsed = time.Since(start)
	return stats
}

func (s *Scheduler) runTask(ctx context.Context, task *domain.DownloadTask) {
	start := time.Now()
	err := s.fetcher.Fetch(ctx, task)
	for attempt := 0; err != nil && attempt < s.maxRetries; attempt++ {
		s.logger.Warn("retrying failed download",
			zap.String("name", task.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if s.retryDelay > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		task.Reset()
		err = s.fetcher.Fetch(ctx, task)
	}

	elapsed := time.Since(start)
	view := task.Snapshot()
	if err != nil {
		s.logger.Error("download failed",
			zap.String("kind", string(s.kind)),
			zap.String("name", task.Name),
			zap.String("lesson", task.LessonTitle),
			zap.Error(err))
	} else {
		s.logger.Info("download finished",
			zap.String("kind", string(s.kind)),
			zap.String("name", task.Name),
			zap.String("status", string(view.Status)),
			zap.Int64("size_bytes", view.BytesDownloaded),
			zap.Duration("elapsed", elapsed))
	}

	if s.onTaskDone != nil {
		s.onTaskDone(task, elapsed)
	}
}

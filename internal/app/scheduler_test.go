package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
)

// fakeFetcher drives scheduler tests without the network
type fakeFetcher struct {
	mu        sync.Mutex
	calls     int32
	active    int32
	maxActive int32
	failNames map[string]bool
	delay     time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, task *domain.DownloadTask) error {
	atomic.AddInt32(&f.calls, 1)
	cur := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)

	f.mu.Lock()
	if cur > f.maxActive {
		f.maxActive = cur
	}
	fail := f.failNames[task.Name]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	task.MarkDownloading()
	if fail {
		err := errors.New("simulated failure")
		task.MarkFailed(err)
		return err
	}
	task.AddBytes(100)
	task.SetTotalBytes(100)
	task.MarkCompleted()
	return nil
}

func newTask(name string) *domain.DownloadTask {
	return domain.NewDownloadTask("https://example.com/"+name, "/tmp/"+name, name, domain.DetectFileType(name), "Aula 01")
}

func TestSchedulerClampsWorkerCount(t *testing.T) {
	docs := NewScheduler(SchedulerDocuments, 15, 0, &fakeFetcher{}, zap.NewNop())
	assert.Equal(t, domain.MaxDocumentWorkers, docs.Workers())

	videos := NewScheduler(SchedulerVideos, 15, 0, &fakeFetcher{}, zap.NewNop())
	assert.Equal(t, domain.MaxVideoWorkers, videos.Workers())

	floor := NewScheduler(SchedulerDocuments, 0, 0, &fakeFetcher{}, zap.NewNop())
	assert.Equal(t, 1, floor.Workers())
}

func TestSchedulerRunAllCompletesEverything(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewScheduler(SchedulerDocuments, 3, 0, fetcher, zap.NewNop())
	for i := 0; i < 12; i++ {
		s.AddTask(newTask("file.pdf"))
	}

	stats := s.RunAll(context.Background())
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 12, stats.Completed)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, int64(1200), stats.TotalBytes)
}

func TestSchedulerFailureIsolation(t *testing.T) {
	fetcher := &fakeFetcher{failNames: map[string]bool{"broken.pdf": true}}
	s := NewScheduler(SchedulerDocuments, 2, 0, fetcher, zap.NewNop())
	s.AddTask(newTask("broken.pdf"))
	for i := 0; i < 5; i++ {
		s.AddTask(newTask("ok.pdf"))
	}

	stats := s.RunAll(context.Background())
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 5, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
}

func TestSchedulerRespectsWorkerLimit(t *testing.T) {
	fetcher := &fakeFetcher{delay: 20 * time.Millisecond}
	s := NewScheduler(SchedulerVideos, 2, 0, fetcher, zap.NewNop())
	for i := 0; i < 8; i++ {
		s.AddTask(newTask("clip.mp4"))
	}

	s.RunAll(context.Background())
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.LessOrEqual(t, fetcher.maxActive, int32(2))
}

func TestSchedulerRetriesUpToLimit(t *testing.T) {
	fetcher := &fakeFetcher{failNames: map[string]bool{"flaky.pdf": true}}
	s := NewScheduler(SchedulerDocuments, 1, 2, fetcher, zap.NewNop())
	s.AddTask(newTask("flaky.pdf"))

	stats := s.RunAll(context.Background())
	assert.Equal(t, 1, stats.Failed)
	// initial attempt plus two retries
	assert.Equal(t, int32(3), atomic.LoadInt32(&fetcher.calls))
}

func TestSchedulerOnTaskDoneRunsPerTask(t *testing.T) {
	fetcher := &fakeFetcher{failNames: map[string]bool{"broken.pdf": true}}
	s := NewScheduler(SchedulerDocuments, 3, 0, fetcher, zap.NewNop())

	var mu sync.Mutex
	statuses := map[domain.TaskStatus]int{}
	s.OnTaskDone(func(task *domain.DownloadTask, elapsed time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		statuses[task.Status()]++
	})

	s.AddTask(newTask("broken.pdf"))
	s.AddTask(newTask("a.pdf"))
	s.AddTask(newTask("b.pdf"))

	s.RunAll(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, statuses[domain.TaskCompleted])
	assert.Equal(t, 1, statuses[domain.TaskFailed])
}

func TestSchedulerProgressAfterRun(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := NewScheduler(SchedulerDocuments, 2, 0, fetcher, zap.NewNop())
	tasks := make([]*domain.DownloadTask, 4)
	for i := range tasks {
		tasks[i] = newTask("doc.pdf")
		s.AddTask(tasks[i])
	}

	require.Equal(t, 4, s.Progress().Total)
	stats := s.RunAll(context.Background())
	assert.Equal(t, 4, stats.Completed)

	// queue drains after a run so the scheduler can be reused
	assert.Zero(t, s.Progress().Total)
}

package app

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
)

// syncBuffer guards concurrent writes from the monitor goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressMonitorRendersSummary(t *testing.T) {
	color.NoColor = true

	s := NewScheduler(SchedulerDocuments, 2, 0, &fakeFetcher{}, zap.NewNop())
	task := newTask("slides.pdf")
	task.MarkDownloading()
	task.SetTotalBytes(1000)
	task.AddBytes(420)
	s.AddTask(task)

	out := &syncBuffer{}
	m := NewProgressMonitor(s)
	m.out = out
	m.width = func() int { return 80 }
	m.interval = 10 * time.Millisecond

	m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	output := out.String()
	assert.Contains(t, output, "slides.pdf")
	assert.Contains(t, output, "42.0%")
	assert.Contains(t, output, "1 active")
}

func TestProgressMonitorSilentWhenIdle(t *testing.T) {
	s := NewScheduler(SchedulerDocuments, 2, 0, &fakeFetcher{}, zap.NewNop())

	out := &syncBuffer{}
	m := NewProgressMonitor(s)
	m.out = out
	m.interval = 10 * time.Millisecond

	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	assert.Empty(t, out.String())
}

func TestRenderTaskLineUnknownSize(t *testing.T) {
	color.NoColor = true

	view := domain.TaskView{
		Name:            "mystery.bin",
		Status:          domain.TaskDownloading,
		BytesDownloaded: 2048,
		StartedAt:       time.Now().Add(-time.Second),
	}
	line := renderTaskLine(view, 80)
	assert.Contains(t, line, "mystery.bin")
	assert.Contains(t, line, "2.00KB")
	assert.False(t, strings.Contains(line, "%"))
}

func TestRenderTaskLineTruncatesOnRunes(t *testing.T) {
	color.NoColor = true

	view := domain.TaskView{
		Name:            strings.Repeat("çã", 20) + ".pdf",
		Status:          domain.TaskDownloading,
		BytesDownloaded: 10,
		TotalBytes:      100,
		StartedAt:       time.Now().Add(-time.Second),
	}
	line := renderTaskLine(view, 80)
	assert.True(t, utf8.ValidString(line))
	assert.Contains(t, line, strings.Repeat("çã", 13)+"ç...")
}

func TestProgressMonitorStopIsIdempotent(t *testing.T) {
	m := NewProgressMonitor()
	m.Stop()
	m.Start()
	m.Stop()
	m.Stop()
}

package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/yourusername/edufetch-go/internal/domain"
	"github.com/yourusername/edufetch-go/pkg/format"
)

const defaultTermWidth = 80

// ProgressMonitor periodically renders the live state of the download
// schedulers to the terminal. It only reads task snapshots; it never
// influences scheduling.
type ProgressMonitor struct {
	schedulers []*Scheduler
	interval   time.Duration
	out        io.Writer
	width      func() int

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewProgressMonitor creates a monitor over the given schedulers
func NewProgressMonitor(schedulers ...*Scheduler) *ProgressMonitor {
	return &ProgressMonitor{
		schedulers: schedulers,
		interval:   time.Second,
		out:        os.Stdout,
		width:      terminalWidth,
	}
}

// Start begins rendering until Stop is called. Starting a running monitor
// is a no-op.
func (m *ProgressMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go func() {
		defer close(m.doneCh)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.render()
			case <-m.stopCh:
				m.render()
				return
			}
		}
	}()
}

// Stop halts rendering after one final frame
func (m *ProgressMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()
	<-done
}

func (m *ProgressMonitor) render() {
	width := m.width()
	var b strings.Builder

	var total, done, active int
	var bytesDown int64
	for _, s := range m.schedulers {
		summary := s.Progress()
		total += summary.Total
		done += summary.Done
		active += summary.Active
		bytesDown += summary.BytesDownloaded

		for _, view := range s.Tasks() {
			if view.Status != domain.TaskDownloading {
				continue
			}
			b.WriteString(renderTaskLine(view, width))
			b.WriteByte('\n')
		}
	}

	if total == 0 {
		return
	}

	summaryLine := fmt.Sprintf("%d/%d files done, %d active, %s transferred",
		done, total, active, format.Bytes(bytesDown))
	b.WriteString(color.CyanString(summaryLine))
	b.WriteByte('\n')

	fmt.Fprint(m.out, b.String())
}

// renderTaskLine draws one task as "name [=====>    ] 42.0% 1.2 MB/s"
func renderTaskLine(view domain.TaskView, width int) string {
	name := view.Name
	if runes := []rune(name); len(runes) > 30 {
		name = string(runes[:27]) + "..."
	}

	speed := format.Speed(view.Speed())
	percent := view.Progress() * 100

	barWidth := width - 30 - len(speed) - 12
	if barWidth < 10 {
		barWidth = 10
	}
	filled := int(view.Progress() * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)

	if view.TotalBytes == 0 {
		// unknown size, show bytes instead of a percentage
		return fmt.Sprintf("%-30s %s %s", name,
			format.Bytes(view.BytesDownloaded), color.YellowString(speed))
	}
	return fmt.Sprintf("%-30s [%s] %5.1f%% %s/%s %s ETA %s", name,
		color.GreenString(bar), percent,
		format.Bytes(view.BytesDownloaded), format.Bytes(view.TotalBytes),
		color.YellowString(speed), format.Clock(view.ETA()))
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultTermWidth
}

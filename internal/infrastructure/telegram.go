package infrastructure

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
	"github.com/yourusername/edufetch-go/pkg/format"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier implements domain.Notifier over the Telegram Bot API.
// Consecutive sends are spaced at least MinInterval apart to stay under the
// bot rate limits; a delivery failure is logged and reported to the caller
// but never aborts anything.
type TelegramNotifier struct {
	config *domain.NotificationConfig
	client *http.Client
	logger *zap.Logger

	mu       sync.Mutex
	lastSent time.Time
}

// NewTelegramNotifier creates a Telegram notifier
func NewTelegramNotifier(config *domain.NotificationConfig, log *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: log,
	}
}

// Send delivers one message and reports success. Disabled or unconfigured
// notifiers report success without touching the network.
func (t *TelegramNotifier) Send(text string) bool {
	if !t.config.Enabled || t.config.BotToken == "" || t.config.ChatID == "" {
		return true
	}

	t.throttle()

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, t.config.BotToken)
	resp, err := t.client.PostForm(endpoint, url.Values{
		"chat_id": {t.config.ChatID},
		"text":    {text},
	})
	if err != nil {
		t.logger.Warn("failed to send telegram message", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.logger.Warn("telegram API rejected message", zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

// TestConnection verifies the bot credentials against the getMe endpoint.
// A disabled notifier passes trivially.
func (t *TelegramNotifier) TestConnection() error {
	if !t.config.Enabled {
		return nil
	}
	if t.config.BotToken == "" || t.config.ChatID == "" {
		return fmt.Errorf("telegram enabled but bot token or chat id missing")
	}

	resp, err := t.client.Get(fmt.Sprintf("%s/bot%s/getMe", telegramAPIBase, t.config.BotToken))
	if err != nil {
		return fmt.Errorf("failed to reach telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram rejected bot credentials: status %d", resp.StatusCode)
	}
	return nil
}

func (t *TelegramNotifier) throttle() {
	t.mu.Lock()
	defer t.mu.Unlock()

	minInterval := t.config.MinInterval
	if minInterval <= 0 {
		minInterval = time.Second
	}
	if wait := minInterval - time.Since(t.lastSent); wait > 0 {
		time.Sleep(wait)
	}
	t.lastSent = time.Now()
}

// NotifyRunStarted announces the start of a download run
func (t *TelegramNotifier) NotifyRunStarted(courses int) {
	t.Send(fmt.Sprintf("🚀 Starting download run: %d course(s) pending", courses))
}

// NotifyCourseStarted announces one course beginning
func (t *TelegramNotifier) NotifyCourseStarted(title string, lessons int) {
	t.Send(fmt.Sprintf("📚 Downloading course: %s (%d lessons)", title, lessons))
}

// NotifyLessonProgress reports periodic lesson progress within a course
func (t *TelegramNotifier) NotifyLessonProgress(course string, done, total int) {
	t.Send(fmt.Sprintf("⏳ %s: %d/%d lessons done", course, done, total))
}

// NotifyCourseCompleted announces one course finishing with its totals
func (t *TelegramNotifier) NotifyCourseCompleted(title string, stats domain.CourseStatistics) {
	t.Send(fmt.Sprintf("✅ Course complete: %s\n%d lessons, %d files, %s",
		title, stats.Lessons, stats.Files, format.Bytes(stats.TotalBytes)))
}

// NotifyCourseIncomplete reports a course left with missing lessons
func (t *TelegramNotifier) NotifyCourseIncomplete(report domain.IncompleteCourseReport) {
	t.Send(fmt.Sprintf("⚠️ Incomplete: %s\n%d of %d lessons local (%.1f%%), %d missing",
		report.Course.Title, report.LocalLessons, report.RemoteLessons,
		report.Progress, report.MissingLessons))
}

// NotifyError reports a non-fatal error encountered during a run
func (t *TelegramNotifier) NotifyError(course string, err error) {
	t.Send(fmt.Sprintf("❌ Error in %s: %v", course, err))
}

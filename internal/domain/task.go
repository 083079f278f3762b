package domain

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a download task
type TaskStatus string

const (
	TaskPending     TaskStatus = "pending"
	TaskDownloading TaskStatus = "downloading"
	TaskCompleted   TaskStatus = "completed"
	TaskFailed      TaskStatus = "failed"
	TaskSkipped     TaskStatus = "skipped"
)

// IsTerminal reports whether the status admits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskSkipped
}

// FileType categorizes downloaded content
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeVideo   FileType = "video"
	FileTypeText    FileType = "text"
	FileTypeImage   FileType = "image"
	FileTypeArchive FileType = "archive"
	FileTypeUnknown FileType = "unknown"
)

var extensionTypes = map[string]FileType{
	"pdf":  FileTypePDF,
	"mp4":  FileTypeVideo,
	"mkv":  FileTypeVideo,
	"avi":  FileTypeVideo,
	"webm": FileTypeVideo,
	"txt":  FileTypeText,
	"md":   FileTypeText,
	"doc":  FileTypeText,
	"docx": FileTypeText,
	"png":  FileTypeImage,
	"jpg":  FileTypeImage,
	"jpeg": FileTypeImage,
	"gif":  FileTypeImage,
	"svg":  FileTypeImage,
	"zip":  FileTypeArchive,
	"rar":  FileTypeArchive,
	"7z":   FileTypeArchive,
	"tar":  FileTypeArchive,
	"gz":   FileTypeArchive,
}

// DetectFileType maps a file name to its content category by extension.
func DetectFileType(name string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return FileTypeUnknown
}

// DownloadTask is one file to be fetched. A task is owned by the scheduler
// that created it and mutated in place by the worker executing it; everyone
// else observes it through Snapshot.
type DownloadTask struct {
	ID          string
	URL         string
	DestPath    string
	Name        string
	Type        FileType
	LessonTitle string
	Referer     string

	mu              sync.Mutex
	status          TaskStatus
	bytesDownloaded int64
	totalBytes      int64
	startedAt       time.Time
	finishedAt      time.Time
	errMessage      string
}

// NewDownloadTask creates a pending download task
func NewDownloadTask(url, destPath, name string, fileType FileType, lessonTitle string) *DownloadTask {
	return &DownloadTask{
		ID:          uuid.New().String(),
		URL:         url,
		DestPath:    destPath,
		Name:        name,
		Type:        fileType,
		LessonTitle: lessonTitle,
		status:      TaskPending,
	}
}

// MarkDownloading records the start of the transfer
func (t *DownloadTask) MarkDownloading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskDownloading
	t.startedAt = time.Now()
}

// MarkCompleted records a successful transfer
func (t *DownloadTask) MarkCompleted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskCompleted
	t.finishedAt = time.Now()
}

// MarkFailed records a terminal failure with a human-readable message
func (t *DownloadTask) MarkFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskFailed
	t.finishedAt = time.Now()
	if err != nil {
		t.errMessage = err.Error()
	}
}

// MarkSkipped records that the destination already existed; sizeBytes is the
// on-disk size of the existing file.
func (t *DownloadTask) MarkSkipped(sizeBytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskSkipped
	t.finishedAt = time.Now()
	t.bytesDownloaded = sizeBytes
	t.totalBytes = sizeBytes
}

// SetTotalBytes records the expected size once response headers arrive.
// Zero means unknown.
func (t *DownloadTask) SetTotalBytes(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalBytes = n
}

// AddBytes accumulates transferred bytes; called once per streamed chunk.
func (t *DownloadTask) AddBytes(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bytesDownloaded += n
}

// Status returns the current lifecycle state
func (t *DownloadTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Reset returns a terminal-failed task to pending so it can be re-queued.
// Used only by the scheduler's bounded retry; callers never re-queue tasks.
func (t *DownloadTask) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = TaskPending
	t.bytesDownloaded = 0
	t.totalBytes = 0
	t.startedAt = time.Time{}
	t.finishedAt = time.Time{}
	t.errMessage = ""
}

// Snapshot returns a consistent read-only copy of the task state
func (t *DownloadTask) Snapshot() TaskView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TaskView{
		ID:              t.ID,
		Name:            t.Name,
		Type:            t.Type,
		LessonTitle:     t.LessonTitle,
		DestPath:        t.DestPath,
		Status:          t.status,
		BytesDownloaded: t.bytesDownloaded,
		TotalBytes:      t.totalBytes,
		StartedAt:       t.startedAt,
		FinishedAt:      t.finishedAt,
		Error:           t.errMessage,
	}
}

// TaskView is an immutable snapshot of a DownloadTask, safe to share with
// the progress monitor and the status API.
type TaskView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            FileType   `json:"type"`
	LessonTitle     string     `json:"lesson_title"`
	DestPath        string     `json:"dest_path"`
	Status          TaskStatus `json:"status"`
	BytesDownloaded int64      `json:"bytes_downloaded"`
	TotalBytes      int64      `json:"total_bytes"`
	StartedAt       time.Time  `json:"started_at,omitempty"`
	FinishedAt      time.Time  `json:"finished_at,omitempty"`
	Error           string     `json:"error,omitempty"`
}

// Progress returns the completed fraction in [0,1]; zero when the total
// size is unknown.
func (v TaskView) Progress() float64 {
	if v.TotalBytes == 0 {
		return 0
	}
	return float64(v.BytesDownloaded) / float64(v.TotalBytes)
}

// Speed returns the instantaneous throughput in bytes per second over the
// task's wall-clock lifetime.
func (v TaskView) Speed() float64 {
	if v.StartedAt.IsZero() {
		return 0
	}
	end := v.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	elapsed := end.Sub(v.StartedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(v.BytesDownloaded) / elapsed
}

// ETA estimates the time remaining at the current speed; zero when the
// total size or speed is unknown.
func (v TaskView) ETA() time.Duration {
	speed := v.Speed()
	if speed == 0 || v.TotalBytes == 0 {
		return 0
	}
	remaining := float64(v.TotalBytes - v.BytesDownloaded)
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining / speed * float64(time.Second))
}

// Duration returns the wall-clock time the task has been (or was) running.
func (v TaskView) Duration() time.Duration {
	if v.StartedAt.IsZero() {
		return 0
	}
	end := v.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(v.StartedAt)
}

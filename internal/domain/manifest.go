package domain

// File record statuses persisted in the manifest.
const (
	FileStatusSuccess = "success"
	FileStatusError   = "error"
	FileStatusSkipped = "skipped"
)

// FileRecord is one downloaded (or attempted) file inside a lesson entry.
// Records are append-only: a lesson's history is never rewritten.
type FileRecord struct {
	Name         string   `json:"name"`
	SizeBytes    int64    `json:"size_bytes"`
	SizeMB       float64  `json:"size_mb"`
	Type         FileType `json:"type"`
	DownloadTime string   `json:"download_time"`
	Status       string   `json:"status"`
	AddedAt      string   `json:"added_at"`
}

// LessonRecord is the manifest entry for one lesson. The presence of a
// lesson key marks the lesson as downloaded for resume purposes, regardless
// of individual file outcomes.
type LessonRecord struct {
	Timestamp   string       `json:"timestamp"`
	TotalFiles  int          `json:"total_files"`
	Files       []FileRecord `json:"files"`
	CompletedAt string       `json:"completed_at,omitempty"`
}

// CourseStatistics aggregates manifest contents for one course
type CourseStatistics struct {
	Lessons    int   `json:"lessons"`
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}

// ManifestStore is the per-course ledger of downloaded lessons and files,
// the source of truth for resume and idempotence. Mutating operations are
// in-memory only except FinishLesson, which flushes the whole manifest to
// disk. Implementations must serialize concurrent mutation.
type ManifestStore interface {
	StartLesson(title string)
	AddFile(lessonTitle, name string, sizeBytes int64, fileType FileType, downloadTime, status string)
	FinishLesson(title string) error
	IsLessonDownloaded(title string) bool
	DownloadedLessons() []string
	LessonCount() int
	Statistics() CourseStatistics
	FailedFiles(lessonTitle string) []FileRecord
}

package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
	"github.com/yourusername/edufetch-go/pkg/format"
)

const manifestFileName = "files_manifest.json"

// FileManifestStore implements domain.ManifestStore backed by a single JSON
// file inside the course directory. The manifest loads once at construction;
// a corrupt or missing file starts an empty manifest rather than failing the
// run. All mutation happens under one mutex because scheduler workers report
// finished files concurrently.
type FileManifestStore struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	lessons map[string]*domain.LessonRecord
}

// NewFileManifestStore loads (or initializes) the manifest for courseDir
func NewFileManifestStore(courseDir string, log *zap.Logger) *FileManifestStore {
	s := &FileManifestStore{
		path:    filepath.Join(courseDir, manifestFileName),
		logger:  log,
		lessons: make(map[string]*domain.LessonRecord),
	}
	s.load()
	return s
}

func (s *FileManifestStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read manifest, starting empty",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return
	}

	var lessons map[string]*domain.LessonRecord
	if err := json.Unmarshal(data, &lessons); err != nil {
		s.logger.Warn("corrupt manifest, starting empty",
			zap.String("path", s.path),
			zap.Error(err))
		return
	}
	s.lessons = lessons
	if s.lessons == nil {
		s.lessons = make(map[string]*domain.LessonRecord)
	}
}

// StartLesson creates the lesson entry if absent. Re-starting an existing
// lesson keeps its file history.
func (s *FileManifestStore) StartLesson(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[title]; ok {
		return
	}
	s.lessons[title] = &domain.LessonRecord{
		Timestamp: time.Now().Format(time.RFC3339),
		Files:     []domain.FileRecord{},
	}
}

// AddFile appends a file record to the lesson entry. The lesson entry is
// created on demand so workers never race StartLesson.
func (s *FileManifestStore) AddFile(lessonTitle, name string, sizeBytes int64, fileType domain.FileType, downloadTime, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lessons[lessonTitle]
	if !ok {
		rec = &domain.LessonRecord{
			Timestamp: time.Now().Format(time.RFC3339),
			Files:     []domain.FileRecord{},
		}
		s.lessons[lessonTitle] = rec
	}

	rec.Files = append(rec.Files, domain.FileRecord{
		Name:         name,
		SizeBytes:    sizeBytes,
		SizeMB:       format.MegaBytes(sizeBytes),
		Type:         fileType,
		DownloadTime: downloadTime,
		Status:       status,
		AddedAt:      time.Now().Format(time.RFC3339),
	})
	rec.TotalFiles = len(rec.Files)
}

// FinishLesson stamps the lesson as completed and flushes the whole manifest
// to disk atomically (temp file plus rename).
func (s *FileManifestStore) FinishLesson(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lessons[title]
	if !ok {
		rec = &domain.LessonRecord{
			Timestamp: time.Now().Format(time.RFC3339),
			Files:     []domain.FileRecord{},
		}
		s.lessons[title] = rec
	}
	rec.CompletedAt = time.Now().Format(time.RFC3339)
	rec.TotalFiles = len(rec.Files)

	return s.flushLocked()
}

func (s *FileManifestStore) flushLocked() error {
	data, err := json.MarshalIndent(s.lessons, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

// IsLessonDownloaded reports whether the lesson key exists in the manifest.
// Key presence alone gates resume; file outcomes inside the entry do not.
func (s *FileManifestStore) IsLessonDownloaded(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lessons[title]
	return ok
}

// DownloadedLessons returns the recorded lesson titles in sorted order
func (s *FileManifestStore) DownloadedLessons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	titles := make([]string, 0, len(s.lessons))
	for title := range s.lessons {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// LessonCount returns the number of recorded lessons
func (s *FileManifestStore) LessonCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lessons)
}

// Statistics aggregates lesson, file and byte totals across the manifest
func (s *FileManifestStore) Statistics() domain.CourseStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.CourseStatistics{Lessons: len(s.lessons)}
	for _, rec := range s.lessons {
		stats.Files += len(rec.Files)
		for _, f := range rec.Files {
			stats.TotalBytes += f.SizeBytes
		}
	}
	return stats
}

// FailedFiles returns the error-status records for one lesson
func (s *FileManifestStore) FailedFiles(lessonTitle string) []domain.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lessons[lessonTitle]
	if !ok {
		return nil
	}
	var failed []domain.FileRecord
	for _, f := range rec.Files {
		if f.Status == domain.FileStatusError {
			failed = append(failed, f)
		}
	}
	return failed
}

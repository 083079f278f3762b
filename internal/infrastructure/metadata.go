package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/edufetch-go/internal/domain"
)

const metadataFileName = "course_metadata.json"

// WriteCourseMetadata records the original remote title of a course
// directory. The sidecar is write-once: an existing file is left untouched
// so the first-seen title remains authoritative.
func WriteCourseMetadata(courseDir, originalTitle, sanitizedTitle string) error {
	path := filepath.Join(courseDir, metadataFileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	meta := domain.CourseMetadata{
		OriginalTitle:  originalTitle,
		SanitizedTitle: sanitizedTitle,
		DownloadDate:   time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode course metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write course metadata: %w", err)
	}
	return nil
}

// ReadCourseMetadata loads the sidecar from courseDir. A missing or corrupt
// sidecar returns nil without error so directory matching can fall through
// to name-based heuristics.
func ReadCourseMetadata(courseDir string) *domain.CourseMetadata {
	data, err := os.ReadFile(filepath.Join(courseDir, metadataFileName))
	if err != nil {
		return nil
	}
	var meta domain.CourseMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return &meta
}

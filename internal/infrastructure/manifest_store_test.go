package infrastructure

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
)

func newTestStore(t *testing.T) (*FileManifestStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileManifestStore(dir, zap.NewNop()), dir
}

func TestManifestStartAndFinishLesson(t *testing.T) {
	store, dir := newTestStore(t)

	store.StartLesson("Aula 01 - Introducao")
	store.AddFile("Aula 01 - Introducao", "slides.pdf", 1048576, domain.FileTypePDF, "00:00:03", domain.FileStatusSuccess)
	require.NoError(t, store.FinishLesson("Aula 01 - Introducao"))

	assert.True(t, store.IsLessonDownloaded("Aula 01 - Introducao"))
	assert.False(t, store.IsLessonDownloaded("Aula 02"))
	assert.Equal(t, 1, store.LessonCount())

	// manifest must be on disk after FinishLesson
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	require.NoError(t, err)

	var lessons map[string]*domain.LessonRecord
	require.NoError(t, json.Unmarshal(data, &lessons))
	rec := lessons["Aula 01 - Introducao"]
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.TotalFiles)
	assert.NotEmpty(t, rec.CompletedAt)
	assert.Equal(t, 1.0, rec.Files[0].SizeMB)
}

func TestManifestResumeAcrossInstances(t *testing.T) {
	store, dir := newTestStore(t)
	store.StartLesson("Aula 01")
	require.NoError(t, store.FinishLesson("Aula 01"))

	reopened := NewFileManifestStore(dir, zap.NewNop())
	assert.True(t, reopened.IsLessonDownloaded("Aula 01"))
	assert.Equal(t, []string{"Aula 01"}, reopened.DownloadedLessons())
}

func TestManifestStatisticsRoundTrip(t *testing.T) {
	store, dir := newTestStore(t)

	store.StartLesson("Aula 01")
	store.AddFile("Aula 01", "slides.pdf", 1048576, domain.FileTypePDF, "00:00:02", domain.FileStatusSuccess)
	store.AddFile("Aula 01", "aula.mp4", 52428800, domain.FileTypeVideo, "00:04:10", domain.FileStatusSuccess)
	require.NoError(t, store.FinishLesson("Aula 01"))

	store.StartLesson("Aula 02")
	store.AddFile("Aula 02", "exercicios.pdf", 2048, domain.FileTypePDF, "00:00:01", domain.FileStatusSuccess)
	store.AddFile("Aula 02", "gabarito.pdf", 0, domain.FileTypePDF, "00:00:05", domain.FileStatusError)
	require.NoError(t, store.FinishLesson("Aula 02"))

	store.StartLesson("Aula 03")
	require.NoError(t, store.FinishLesson("Aula 03"))

	want := store.Statistics()
	require.Equal(t, 3, want.Lessons)
	require.Equal(t, 4, want.Files)
	require.Equal(t, int64(1048576+52428800+2048), want.TotalBytes)

	// a fresh store over the flushed file must aggregate identically
	reopened := NewFileManifestStore(dir, zap.NewNop())
	assert.Equal(t, want, reopened.Statistics())
	assert.Equal(t, store.DownloadedLessons(), reopened.DownloadedLessons())
}

func TestManifestCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFileName), []byte("{not json"), 0644))

	store := NewFileManifestStore(dir, zap.NewNop())
	assert.Zero(t, store.LessonCount())

	// a fresh run over a corrupt manifest must still be able to record
	store.StartLesson("Aula 01")
	require.NoError(t, store.FinishLesson("Aula 01"))
	assert.True(t, store.IsLessonDownloaded("Aula 01"))
}

func TestManifestAppendOnlyFileHistory(t *testing.T) {
	store, _ := newTestStore(t)

	store.StartLesson("Aula 03")
	store.AddFile("Aula 03", "video.mp4", 100, domain.FileTypeVideo, "00:01:00", domain.FileStatusError)
	store.AddFile("Aula 03", "video.mp4", 5000, domain.FileTypeVideo, "00:02:00", domain.FileStatusSuccess)
	require.NoError(t, store.FinishLesson("Aula 03"))

	// re-starting keeps history
	store.StartLesson("Aula 03")

	failed := store.FailedFiles("Aula 03")
	require.Len(t, failed, 1)
	assert.Equal(t, "video.mp4", failed[0].Name)

	stats := store.Statistics()
	assert.Equal(t, 1, stats.Lessons)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, int64(5100), stats.TotalBytes)
}

func TestManifestConcurrentAddFile(t *testing.T) {
	store, _ := newTestStore(t)
	store.StartLesson("Aula 04")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddFile("Aula 04", "part.pdf", 10, domain.FileTypePDF, "00:00:01", domain.FileStatusSuccess)
		}()
	}
	wg.Wait()

	require.NoError(t, store.FinishLesson("Aula 04"))
	assert.Equal(t, 20, store.Statistics().Files)
}

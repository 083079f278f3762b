package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	messages []string
}

func (c *captureSink) Send(text string) bool {
	c.messages = append(c.messages, text)
	return true
}

func TestNewCourseLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()

	log, closeLog, err := NewCourseLogger(dir, "Curso_de_Python", "info", nil)
	require.NoError(t, err)

	log.Info("lesson started")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(filepath.Join(dir, "download_Curso_de_Python.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "lesson started")
}

func TestNewCourseLogger_ForwardsWarnToSink(t *testing.T) {
	dir := t.TempDir()
	sink := &captureSink{}

	log, closeLog, err := NewCourseLogger(dir, "curso", "info", sink)
	require.NoError(t, err)
	defer closeLog()

	log.Info("not forwarded")
	log.Warn("disk nearly full")
	log.Error("download failed")

	require.Len(t, sink.messages, 2)
	assert.Contains(t, sink.messages[0], "disk nearly full")
	assert.Contains(t, sink.messages[1], "download failed")
}

func TestNewCourseLogger_CloseReleasesFile(t *testing.T) {
	dir := t.TempDir()

	log, closeLog, err := NewCourseLogger(dir, "curso", "info", nil)
	require.NoError(t, err)

	log.Info("before close")
	require.NoError(t, closeLog())

	// the underlying descriptor is gone, so closing again must fail
	assert.Error(t, closeLog())
}

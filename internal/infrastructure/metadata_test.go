package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseMetadataWriteOnce(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteCourseMetadata(dir, "Curso de Python: Básico!", "Curso_de_Python_Básico"))

	// second write must not overwrite the first-seen title
	require.NoError(t, WriteCourseMetadata(dir, "Renamed Course", "Renamed_Course"))

	meta := ReadCourseMetadata(dir)
	require.NotNil(t, meta)
	assert.Equal(t, "Curso de Python: Básico!", meta.OriginalTitle)
	assert.Equal(t, "Curso_de_Python_Básico", meta.SanitizedTitle)
	assert.NotEmpty(t, meta.DownloadDate)
}

func TestCourseMetadataMissingReturnsNil(t *testing.T) {
	assert.Nil(t, ReadCourseMetadata(t.TempDir()))
}

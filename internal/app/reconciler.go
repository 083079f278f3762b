package app

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yourusername/edufetch-go/internal/domain"
	"github.com/yourusername/edufetch-go/internal/infrastructure"
	"github.com/yourusername/edufetch-go/pkg/fsname"
)

// PendingDetector reconciles the remote catalog against the local download
// tree and reports which courses still have lessons missing. It only reads;
// nothing it computes is persisted.
type PendingDetector struct {
	rootDir string
	catalog domain.CatalogDiscovery
	logger  *zap.Logger
}

// NewPendingDetector creates a detector over rootDir
func NewPendingDetector(rootDir string, catalog domain.CatalogDiscovery, log *zap.Logger) *PendingDetector {
	return &PendingDetector{rootDir: rootDir, catalog: catalog, logger: log}
}

// FindIncomplete returns a report for every remote course whose local copy
// is missing lessons, including courses never downloaded at all. Courses
// whose remote lesson count cannot be determined are skipped rather than
// reported, since there is nothing to compare against.
func (p *PendingDetector) FindIncomplete() ([]domain.IncompleteCourseReport, error) {
	courses, err := p.catalog.ListCourses()
	if err != nil {
		return nil, err
	}

	localDirs := p.listLocalDirs()

	var reports []domain.IncompleteCourseReport
	for _, course := range courses {
		remote, err := p.catalog.CountLessons(course.URL)
		if err != nil {
			p.logger.Warn("failed to count remote lessons",
				zap.String("course", course.Title),
				zap.Error(err))
			remote = 0
		}
		if remote == 0 {
			continue
		}

		dir := p.matchLocalDir(course.Title, localDirs)
		local := 0
		var localPath string
		var localSize int64
		if dir != "" {
			localPath = filepath.Join(p.rootDir, dir)
			local = p.countLocalLessons(localPath)
			localSize = dirSize(localPath)
		}

		if local >= remote {
			continue
		}

		reports = append(reports, domain.IncompleteCourseReport{
			Course:         course,
			LocalPath:      localPath,
			RemoteLessons:  remote,
			LocalLessons:   local,
			MissingLessons: remote - local,
			Progress:       float64(local) / float64(remote) * 100,
			LocalSizeBytes: localSize,
		})
	}
	return reports, nil
}

func (p *PendingDetector) listLocalDirs() []string {
	entries, err := os.ReadDir(p.rootDir)
	if err != nil {
		p.logger.Warn("failed to read download root", zap.String("root", p.rootDir), zap.Error(err))
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && e.Name() != "logs" {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs
}

// matchLocalDir finds the local directory belonging to a remote course
// title. Matching tries, in order: the metadata sidecar's original title,
// a case-insensitive name comparison, an accent-and-punctuation-insensitive
// comparison, and finally substring containment. Returns "" when nothing
// matches.
func (p *PendingDetector) matchLocalDir(courseTitle string, dirs []string) string {
	for _, dir := range dirs {
		meta := infrastructure.ReadCourseMetadata(filepath.Join(p.rootDir, dir))
		if meta != nil && meta.OriginalTitle == courseTitle {
			return dir
		}
	}

	sanitized := fsname.Sanitize(courseTitle)
	for _, dir := range dirs {
		if strings.EqualFold(dir, sanitized) {
			return dir
		}
	}

	folded := foldTitle(courseTitle)
	for _, dir := range dirs {
		if foldTitle(dir) == folded {
			return dir
		}
	}

	for _, dir := range dirs {
		df := foldTitle(dir)
		if df != "" && folded != "" && (strings.Contains(df, folded) || strings.Contains(folded, df)) {
			return dir
		}
	}
	return ""
}

// countLocalLessons prefers the manifest's lesson count; a directory
// without a usable manifest falls back to counting lesson subdirectories.
func (p *PendingDetector) countLocalLessons(coursePath string) int {
	manifest := infrastructure.NewFileManifestStore(coursePath, p.logger)
	if n := manifest.LessonCount(); n > 0 {
		return n
	}

	entries, err := os.ReadDir(coursePath)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			count++
		}
	}
	return count
}

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// foldTitle reduces a title to its lowercase alphanumeric skeleton, with
// diacritics stripped, so "Curso_de_Python_Basico" and "Curso de Python:
// Básico!" compare equal.
func foldTitle(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func dirSize(path string) int64 {
	var total int64
	filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

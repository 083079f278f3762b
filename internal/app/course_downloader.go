package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
	"github.com/yourusername/edufetch-go/internal/infrastructure"
	"github.com/yourusername/edufetch-go/pkg/format"
	"github.com/yourusername/edufetch-go/pkg/fsname"
	"github.com/yourusername/edufetch-go/pkg/logger"
)

const lessonNotesFileName = "Assuntos_dessa_aula.txt"

// progress notifications go out once per this many finished lessons
const notifyEveryLessons = 5

// Notifier is the subset of the Telegram notifier the downloader drives
type Notifier interface {
	Send(text string) bool
	NotifyCourseStarted(title string, lessons int)
	NotifyLessonProgress(course string, done, total int)
	NotifyCourseCompleted(title string, stats domain.CourseStatistics)
	NotifyError(course string, err error)
}

// CourseDownloader orchestrates the download of whole courses: discovery,
// per-lesson resume against the manifest, parallel file transfer through the
// document and video schedulers, and manifest write-back as workers finish.
type CourseDownloader struct {
	config   *domain.Config
	catalog  domain.CatalogDiscovery
	fetcher  domain.Fetcher
	notifier Notifier
	logger   *zap.Logger

	docScheduler   *Scheduler
	videoScheduler *Scheduler
}

// NewCourseDownloader wires a downloader from its collaborators
func NewCourseDownloader(
	config *domain.Config,
	catalog domain.CatalogDiscovery,
	fetcher domain.Fetcher,
	notifier Notifier,
	log *zap.Logger,
) *CourseDownloader {
	d := &CourseDownloader{
		config:   config,
		catalog:  catalog,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   log,
		docScheduler: NewScheduler(SchedulerDocuments,
			config.Scheduler.DocumentWorkers, config.Download.MaxRetries, fetcher, log),
		videoScheduler: NewScheduler(SchedulerVideos,
			config.Scheduler.VideoWorkers, config.Download.MaxRetries, fetcher, log),
	}
	d.docScheduler.SetRetryDelay(config.Download.RetryDelay)
	d.videoScheduler.SetRetryDelay(config.Download.RetryDelay)
	return d
}

// Schedulers exposes both pools for the progress monitor and status API
func (d *CourseDownloader) Schedulers() (documents, videos *Scheduler) {
	return d.docScheduler, d.videoScheduler
}

// DownloadCourse downloads every lesson of one course that the manifest
// does not already record. It reports whether the course finished without
// any failed file.
func (d *CourseDownloader) DownloadCourse(ctx context.Context, course domain.Course) bool {
	courseTitle := fsname.Sanitize(course.Title)
	courseDir := filepath.Join(d.config.Download.RootDir, courseTitle)
	if err := os.MkdirAll(courseDir, 0755); err != nil {
		d.logger.Error("failed to create course directory",
			zap.String("course", course.Title),
			zap.Error(err))
		d.notifier.NotifyError(course.Title, err)
		return false
	}

	log, closeLog := d.courseLogger(courseTitle)
	defer closeLog()

	if err := infrastructure.WriteCourseMetadata(courseDir, course.Title, courseTitle); err != nil {
		log.Warn("failed to write course metadata", zap.Error(err))
	}

	manifest := infrastructure.NewFileManifestStore(courseDir, log)

	lessons, err := d.catalog.ListLessons(course.URL)
	if err != nil {
		log.Error("failed to list lessons", zap.Error(err))
		d.notifier.NotifyError(course.Title, err)
		return false
	}

	d.notifier.NotifyCourseStarted(course.Title, len(lessons))
	log.Info("course download started",
		zap.String("course", course.Title),
		zap.Int("lessons", len(lessons)),
		zap.Int("already_downloaded", manifest.LessonCount()))

	ok := true
	done := 0
	for _, lesson := range lessons {
		select {
		case <-ctx.Done():
			log.Warn("course download cancelled", zap.String("course", course.Title))
			return false
		default:
		}

		if manifest.IsLessonDownloaded(lesson.Title) {
			log.Debug("lesson already downloaded, skipping", zap.String("lesson", lesson.Title))
			done++
			continue
		}

		if err := d.downloadLesson(ctx, log, manifest, courseDir, lesson); err != nil {
			log.Error("lesson finished with failures",
				zap.String("lesson", lesson.Title),
				zap.Error(err))
			d.notifier.NotifyError(course.Title, err)
			ok = false
		}

		done++
		if done%notifyEveryLessons == 0 {
			d.notifier.NotifyLessonProgress(course.Title, done, len(lessons))
		}
	}

	stats := manifest.Statistics()
	log.Info("course download finished",
		zap.String("course", course.Title),
		zap.Int("lessons", stats.Lessons),
		zap.Int("files", stats.Files),
		zap.String("total_size", format.Bytes(stats.TotalBytes)))
	d.notifier.NotifyCourseCompleted(course.Title, stats)
	return ok
}

// downloadLesson fetches every file of one lesson and records the outcome
// in the manifest. The lesson entry is flushed even when files failed, so a
// later run will not redo the lesson; failed files stay visible in the
// manifest history instead.
func (d *CourseDownloader) downloadLesson(
	ctx context.Context,
	log *zap.Logger,
	manifest domain.ManifestStore,
	courseDir string,
	lesson domain.Lesson,
) error {
	lessonDir := filepath.Join(courseDir, fsname.Sanitize(lesson.Title))
	if err := os.MkdirAll(lessonDir, 0755); err != nil {
		return fmt.Errorf("failed to create lesson directory: %w", err)
	}

	manifest.StartLesson(lesson.Title)
	d.writeLessonNotes(log, lessonDir, lesson)

	files, err := d.catalog.ListLessonFiles(lesson.URL)
	if err != nil {
		// discovery failures still close the lesson so the run can move on
		log.Warn("failed to list lesson files", zap.String("lesson", lesson.Title), zap.Error(err))
		if ferr := manifest.FinishLesson(lesson.Title); ferr != nil {
			log.Error("failed to flush manifest", zap.Error(ferr))
		}
		return err
	}

	for _, file := range files {
		name := fsname.Sanitize(file.Name)
		task := domain.NewDownloadTask(file.URL, filepath.Join(lessonDir, name), name, file.Type, lesson.Title)
		task.Referer = lesson.URL
		if file.Type == domain.FileTypeVideo {
			d.videoScheduler.AddTask(task)
		} else {
			d.docScheduler.AddTask(task)
		}
	}

	recordDone := func(task *domain.DownloadTask, elapsed time.Duration) {
		view := task.Snapshot()
		status := domain.FileStatusSuccess
		switch view.Status {
		case domain.TaskFailed:
			status = domain.FileStatusError
		case domain.TaskSkipped:
			status = domain.FileStatusSkipped
		}
		manifest.AddFile(task.LessonTitle, task.Name, view.BytesDownloaded,
			task.Type, format.Clock(elapsed), status)
	}
	d.docScheduler.OnTaskDone(recordDone)
	d.videoScheduler.OnTaskDone(recordDone)

	docStats := d.docScheduler.RunAll(ctx)
	videoStats := d.videoScheduler.RunAll(ctx)

	if err := manifest.FinishLesson(lesson.Title); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}

	log.Info("lesson finished",
		zap.String("lesson", lesson.Title),
		zap.Int("files", docStats.Total+videoStats.Total),
		zap.Int("completed", docStats.Completed+videoStats.Completed),
		zap.Int("skipped", docStats.Skipped+videoStats.Skipped),
		zap.Int("failed", docStats.Failed+videoStats.Failed),
		zap.String("size", format.Bytes(docStats.TotalBytes+videoStats.TotalBytes)),
		zap.String("doc_throughput", format.Speed(docStats.AverageThroughput())),
		zap.String("video_throughput", format.Speed(videoStats.AverageThroughput())))

	if failed := docStats.Failed + videoStats.Failed; failed > 0 {
		return fmt.Errorf("%d file(s) failed in lesson %q", failed, lesson.Title)
	}
	return nil
}

// writeLessonNotes drops the lesson subtitle into a notes file alongside
// the downloads. Skipped when the lesson has no subtitle or the file exists.
func (d *CourseDownloader) writeLessonNotes(log *zap.Logger, lessonDir string, lesson domain.Lesson) {
	if lesson.Subtitle == "" {
		return
	}
	path := filepath.Join(lessonDir, lessonNotesFileName)
	if _, err := os.Stat(path); err == nil {
		return
	}
	content := fmt.Sprintf("%s\n\n%s\n", lesson.Title, lesson.Subtitle)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.Warn("failed to write lesson notes", zap.String("lesson", lesson.Title), zap.Error(err))
	}
}

// courseLogger builds the per-course file logger with warnings mirrored to
// the notification channel. The returned func releases the log file and must
// be called when the course finishes. Falls back to the shared logger on
// error, with a no-op release.
func (d *CourseDownloader) courseLogger(courseTitle string) (*zap.Logger, func()) {
	var sink logger.Sink
	if d.notifier != nil {
		sink = d.notifier
	}
	logsDir := filepath.Join(d.config.Download.RootDir, "logs")
	log, closeFn, err := logger.NewCourseLogger(logsDir, courseTitle, d.config.Logging.Level, sink)
	if err != nil {
		d.logger.Warn("failed to create course logger, using shared logger", zap.Error(err))
		return d.logger, func() {}
	}
	return log, func() {
		if err := closeFn(); err != nil {
			d.logger.Warn("failed to close course log file", zap.Error(err))
		}
	}
}

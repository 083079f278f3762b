package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/internal/domain"
)

// FileFetcher implements domain.Fetcher over HTTP. Transfers stream in
// fixed-size chunks to a temporary .part file that is renamed into place
// only on success, so an interrupted run never leaves a truncated file
// behind for the resume check to mistake for a finished download.
type FileFetcher struct {
	client       *http.Client
	config       *domain.DownloadConfig
	videoTimeout time.Duration
	docTimeout   time.Duration
	logger       *zap.Logger
}

// NewFileFetcher creates a fetcher with per-type idle timeouts
func NewFileFetcher(config *domain.DownloadConfig, log *zap.Logger) *FileFetcher {
	return &FileFetcher{
		client:       &http.Client{},
		config:       config,
		docTimeout:   time.Duration(config.TimeoutSeconds) * time.Second,
		videoTimeout: time.Duration(config.VideoTimeoutSeconds) * time.Second,
		logger:       log,
	}
}

// Fetch downloads the task's URL to its destination path. An existing
// destination marks the task skipped and returns nil without touching the
// network. Only the failed terminal state returns an error.
func (f *FileFetcher) Fetch(ctx context.Context, task *domain.DownloadTask) error {
	if info, err := os.Stat(task.DestPath); err == nil {
		task.MarkSkipped(info.Size())
		f.logger.Debug("file already exists, skipping",
			zap.String("name", task.Name),
			zap.Int64("size_bytes", info.Size()))
		return nil
	}

	task.MarkDownloading()
	if err := f.download(ctx, task); err != nil {
		task.MarkFailed(err)
		return err
	}
	task.MarkCompleted()
	return nil
}

func (f *FileFetcher) download(ctx context.Context, task *domain.DownloadTask) error {
	timeout := f.docTimeout
	if task.Type == domain.FileTypeVideo {
		timeout = f.videoTimeout
	}
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The timeout is an idle bound, not a transfer cap: connect, headers
	// and every subsequent read must each make progress within the window.
	// A large video that keeps streaming bytes never expires.
	var idleExpired atomic.Bool
	watchdog := time.AfterFunc(timeout, func() {
		idleExpired.Store(true)
		cancel()
	})
	defer watchdog.Stop()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, task.URL, nil)
	if err != nil {
		return fmt.Errorf("invalid request for %s: %w", task.URL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	if task.Referer != "" {
		req.Header.Set("Referer", task.Referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return classifyTransportError(task.URL, err, idleExpired.Load())
	}
	defer resp.Body.Close()
	watchdog.Reset(timeout)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d for %s", resp.StatusCode, task.URL)
	}
	if resp.ContentLength > 0 {
		task.SetTotalBytes(resp.ContentLength)
	}

	if err := os.MkdirAll(filepath.Dir(task.DestPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	partPath := task.DestPath + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	onChunk := func() {
		watchdog.Reset(timeout)
	}
	if err := f.streamBody(resp.Body, out, task, onChunk, &idleExpired); err != nil {
		out.Close()
		os.Remove(partPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to finalize temp file: %w", err)
	}
	if err := os.Rename(partPath, task.DestPath); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (f *FileFetcher) streamBody(body io.Reader, out *os.File, task *domain.DownloadTask, onChunk func(), idleExpired *atomic.Bool) error {
	chunkSize := f.config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 8192
	}
	buf := make([]byte, chunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("failed to write chunk: %w", werr)
			}
			task.AddBytes(int64(n))
			onChunk()
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return classifyTransportError(task.URL, err, idleExpired.Load())
		}
	}
}

func classifyTransportError(url string, err error, idleExpired bool) error {
	var netErr net.Error
	switch {
	case idleExpired:
		return fmt.Errorf("timeout downloading %s: no data for the timeout window: %w", url, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("timeout downloading %s: %w", url, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("timeout downloading %s: %w", url, err)
	default:
		return fmt.Errorf("connection error downloading %s: %w", url, err)
	}
}

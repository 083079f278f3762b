package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink receives log-derived text events. Send reports whether delivery
// succeeded; failures are never propagated to the logging call site.
type Sink interface {
	Send(text string) bool
}

// NewCourseLogger creates a logger dedicated to one course download. Entries
// go to download_<name>.log inside logsDir; entries at Warn level and above
// are additionally forwarded to sink, when one is provided. The returned
// close function flushes and releases the log file; callers must invoke it
// when the course is done or the file descriptor leaks.
func NewCourseLogger(logsDir, name string, level string, sink Sink) (*zap.Logger, func() error, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}

	logPath := filepath.Join(logsDir, fmt.Sprintf("download_%s.log", name))
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open course log file: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(file),
		parsed,
	)
	if sink != nil {
		core = zapcore.NewTee(core, newSinkCore(sink))
	}

	log := zap.New(core).Named(name)
	closeFn := func() error {
		_ = log.Sync()
		return file.Close()
	}
	return log, closeFn, nil
}

// sinkCore forwards Warn+ log entries to a Sink. It carries no fields of its
// own; the entry message plus level tag is all that goes out.
type sinkCore struct {
	sink Sink
}

func newSinkCore(sink Sink) zapcore.Core {
	return &sinkCore{sink: sink}
}

func (c *sinkCore) Enabled(level zapcore.Level) bool {
	return level >= zapcore.WarnLevel
}

func (c *sinkCore) With([]zapcore.Field) zapcore.Core {
	return c
}

func (c *sinkCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *sinkCore) Write(entry zapcore.Entry, _ []zapcore.Field) error {
	c.sink.Send(fmt.Sprintf("%s %s", entry.Level.CapitalString(), entry.Message))
	return nil
}

func (c *sinkCore) Sync() error {
	return nil
}

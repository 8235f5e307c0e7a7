package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the time format used by console appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface, so zap
// cores such as the zaptest observer can be used directly as appenders.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender writes console-encoded log lines to an io.Writer.
type ConsoleAppender struct {
	mu     sync.Mutex
	writer io.Writer
	syncer zapcore.WriteSyncer
}

// NewStdoutAppender creates a new appender that logs to stdout.
func NewStdoutAppender() Appender {
	return NewWriterAppender(os.Stdout)
}

// NewWriterAppender creates a new appender that logs to the input writer.
func NewWriterAppender(writer io.Writer) *ConsoleAppender {
	ret := &ConsoleAppender{writer: writer}
	if syncer, ok := writer.(zapcore.WriteSyncer); ok {
		ret.syncer = syncer
	}
	return ret
}

// Write outputs the log entry to the underlying writer.
func (app *ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	encoderCfg := NewEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(DefaultTimeFormatStr)
	buf, err := zapcore.NewConsoleEncoder(encoderCfg).EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	app.mu.Lock()
	defer app.mu.Unlock()
	_, err = app.writer.Write(buf.Bytes())
	return err
}

// Sync flushes the writer when it supports syncing. Syncing stdout is a no-op.
func (app *ConsoleAppender) Sync() error {
	if app.syncer == nil || app.writer == os.Stdout {
		return nil
	}
	return app.syncer.Sync()
}

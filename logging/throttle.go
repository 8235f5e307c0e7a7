package logging

import (
	"time"

	"golang.org/x/time/rate"
)

// ThrottledLogger forwards at most one message per interval to the wrapped logger. Messages
// dropped inside the interval are discarded, not queued.
type ThrottledLogger struct {
	logger    Logger
	sometimes *rate.Sometimes
}

// NewThrottledLogger wraps logger so that its messages are emitted at most once per interval. A
// non-positive interval disables throttling.
func NewThrottledLogger(logger Logger, interval time.Duration) *ThrottledLogger {
	if interval <= 0 {
		return &ThrottledLogger{logger: logger, sometimes: &rate.Sometimes{Every: 1}}
	}
	return &ThrottledLogger{logger: logger, sometimes: &rate.Sometimes{Interval: interval}}
}

// Debugf logs at debug level unless a message was emitted within the interval.
func (tl *ThrottledLogger) Debugf(template string, args ...interface{}) {
	tl.sometimes.Do(func() { tl.logger.Debugf(template, args...) })
}

// Infof logs at info level unless a message was emitted within the interval.
func (tl *ThrottledLogger) Infof(template string, args ...interface{}) {
	tl.sometimes.Do(func() { tl.logger.Infof(template, args...) })
}

// Infow logs at info level unless a message was emitted within the interval.
func (tl *ThrottledLogger) Infow(msg string, keysAndValues ...interface{}) {
	tl.sometimes.Do(func() { tl.logger.Infow(msg, keysAndValues...) })
}

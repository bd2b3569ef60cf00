package core

import (
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

// DeveloperLog emits developer-facing diagnostics, each distinct
// category/message pair at most once per process.
type DeveloperLog struct {
	logger Logger
	seen   sync.Map
}

func NewDeveloperLog(logger Logger) *DeveloperLog {
	return &DeveloperLog{logger: glog.Ensure(logger)}
}

// Once logs message at warn level unless it was already logged under
// category. It reports whether the message was emitted.
func (d *DeveloperLog) Once(category string, message string, args ...any) bool {
	if d == nil {
		return false
	}
	if _, loaded := d.seen.LoadOrStore(category+"\x00"+message, struct{}{}); loaded {
		return false
	}
	d.logger.Warn(message, append([]any{"category", category}, args...)...)
	return true
}

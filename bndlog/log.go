// Package bndlog is a small leveled-logger abstraction injected through
// Options.Logger, mirroring the shape saferwall/pe injects via its own
// (unexported from this corpus) log.Helper — pe.Options carries a
// Logger field that callers can override, and pe.File stores a *Helper
// wrapping it. bnd's pipeline does the same for warn/debug/info output
// during extraction and emission (spec.md §7: declaration-level failures
// are logged and skipped, never fatal).
package bndlog

import (
	"github.com/golang/glog"
)

// Logger is the interface callers can supply via Options.Logger. It is
// intentionally narrow — four leveled, printf-style methods — so that
// any of glog, the stdlib log package, or a test spy can implement it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Helper wraps a Logger with nil-safety, so callers can pass a nil
// *Helper around without guarding every call site.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger. A nil logger yields a Helper that uses the
// default glog-backed implementation.
func NewHelper(logger Logger) *Helper {
	if logger == nil {
		logger = defaultLogger{}
	}
	return &Helper{logger: logger}
}

func (h *Helper) Debugf(format string, args ...interface{}) {
	if h == nil {
		return
	}
	h.logger.Debugf(format, args...)
}

func (h *Helper) Infof(format string, args ...interface{}) {
	if h == nil {
		return
	}
	h.logger.Infof(format, args...)
}

func (h *Helper) Warnf(format string, args ...interface{}) {
	if h == nil {
		return
	}
	h.logger.Warnf(format, args...)
}

func (h *Helper) Errorf(format string, args ...interface{}) {
	if h == nil {
		return
	}
	h.logger.Errorf(format, args...)
}

// defaultLogger backs a Helper built from a nil Logger with glog, the
// structured/leveled logging library the reference corpus (fuchsia's
// go.mod) actually depends on.
type defaultLogger struct{}

func (defaultLogger) Debugf(format string, args ...interface{}) {
	glog.V(1).Infof(format, args...)
}

func (defaultLogger) Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func (defaultLogger) Warnf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

func (defaultLogger) Errorf(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}

// Discard is a Logger that drops everything; useful in tests that want
// quiet output without asserting on log content.
type Discard struct{}

func (Discard) Debugf(string, ...interface{}) {}
func (Discard) Infof(string, ...interface{})  {}
func (Discard) Warnf(string, ...interface{})  {}
func (Discard) Errorf(string, ...interface{}) {}

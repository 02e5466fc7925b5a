package server

import (
	"fmt"
	"time"

	"github.com/df07/go-pathtracer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "notice", "warning", "error"
}

// WebLogger implements log.Logger by forwarding every message to a server
// logger and copying it to a browser console channel
type WebLogger struct {
	renderID    string
	base        log.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger for a specific render. A nil base logs
// through the "web" module.
func NewWebLogger(renderID string, base log.Logger, consoleChan chan<- ConsoleMessage) *WebLogger {
	if base == nil {
		base = log.New("web")
	}
	return &WebLogger{
		renderID:    renderID,
		base:        base,
		consoleChan: consoleChan,
	}
}

func (wl *WebLogger) Debug(v ...interface{}) { wl.Debugf("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Debugf(format string, v ...interface{}) {
	wl.base.Debugf("[%s] "+format, wl.args(v)...)
	wl.send(log.Debug, format, v)
}

func (wl *WebLogger) Info(v ...interface{}) { wl.Infof("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Infof(format string, v ...interface{}) {
	wl.base.Infof("[%s] "+format, wl.args(v)...)
	wl.send(log.Info, format, v)
}

func (wl *WebLogger) Notice(v ...interface{}) { wl.Noticef("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Noticef(format string, v ...interface{}) {
	wl.base.Noticef("[%s] "+format, wl.args(v)...)
	wl.send(log.Notice, format, v)
}

func (wl *WebLogger) Warning(v ...interface{}) { wl.Warningf("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Warningf(format string, v ...interface{}) {
	wl.base.Warningf("[%s] "+format, wl.args(v)...)
	wl.send(log.Warning, format, v)
}

func (wl *WebLogger) Error(v ...interface{}) { wl.Errorf("%s", fmt.Sprint(v...)) }
func (wl *WebLogger) Errorf(format string, v ...interface{}) {
	wl.base.Errorf("[%s] "+format, wl.args(v)...)
	wl.send(log.Error, format, v)
}

func (wl *WebLogger) args(v []interface{}) []interface{} {
	return append([]interface{}{wl.renderID}, v...)
}

// send copies a message to the console channel without blocking
func (wl *WebLogger) send(level log.Level, format string, v []interface{}) {
	if wl.consoleChan == nil {
		return
	}

	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   fmt.Sprintf(format, v...),
		Timestamp: time.Now(),
		Level:     level.String(),
	}:
	default:
		// Channel full, drop the message
	}
}

// Package logging provides structured JSON logging for debate client components.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a level name, falling back to warn.
func ParseLevel(s string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; ok {
		return l
	}
	return LevelWarn
}

// Event represents a structured log event
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     Level                  `json:"level"`
	Component string                 `json:"component"`
	Event     string                 `json:"event"`
	RequestID string                 `json:"request_id,omitempty"`
	User      string                 `json:"user,omitempty"`
	Duration  int64                  `json:"duration_ms,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

var (
	outMu    sync.Mutex
	output   io.Writer = os.Stderr
	minLevel           = LevelWarn
)

// SetOutput redirects all loggers. The TUI points this at a file so log
// lines don't tear the screen.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if w == nil {
		w = io.Discard
	}
	output = w
}

// SetLevel sets the minimum level written.
func SetLevel(l Level) {
	outMu.Lock()
	defer outMu.Unlock()
	minLevel = l
}

func emit(e Event) {
	outMu.Lock()
	defer outMu.Unlock()
	if levelRank[e.Level] < levelRank[minLevel] {
		return
	}
	data, _ := json.Marshal(e)
	fmt.Fprintln(output, string(data))
}

// Logger provides structured logging
type Logger struct {
	component string
	requestID string
	user      string
}

// New creates a new logger for a component
func New(component string) *Logger {
	return &Logger{component: component}
}

// WithRequestID tags events with a request ID
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{
		component: l.component,
		requestID: id,
		user:      l.user,
	}
}

// WithUser tags events with the signed-in username
func (l *Logger) WithUser(user string) *Logger {
	return &Logger{
		component: l.component,
		requestID: l.requestID,
		user:      user,
	}
}

// log emits a structured log event
func (l *Logger) log(level Level, event string, extra map[string]interface{}, err error) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: l.component,
		Event:     event,
		RequestID: l.requestID,
		User:      l.user,
		Extra:     extra,
	}

	if err != nil {
		e.Error = err.Error()
	}

	emit(e)
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]interface{}) {
	l.log(LevelDebug, event, extra, nil)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]interface{}) {
	l.log(LevelInfo, event, extra, nil)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]interface{}, err error) {
	l.log(LevelWarn, event, extra, err)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]interface{}, err error) {
	l.log(LevelError, event, extra, err)
}

// TimedEvent logs an event with duration. A non-nil err raises it to error level.
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]interface{}, err error) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     LevelInfo,
		Component: l.component,
		Event:     event,
		RequestID: l.requestID,
		User:      l.user,
		Duration:  time.Since(start).Milliseconds(),
		Extra:     extra,
	}

	if err != nil {
		e.Level = LevelError
		e.Error = err.Error()
	}

	emit(e)
}

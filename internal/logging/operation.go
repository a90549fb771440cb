package logging

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a tracked operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Operation tracks one user-initiated action (a CLI command, a TUI
// mutation) from start to outcome.
type Operation struct {
	ID        string
	Name      string
	StartedAt time.Time
	Status    Status
	Extra     map[string]interface{}

	logger *Logger
}

// Start begins tracking an operation.
func (l *Logger) Start(name string) *Operation {
	return &Operation{
		ID:        uuid.New().String(),
		Name:      name,
		StartedAt: time.Now(),
		Extra:     map[string]interface{}{},
		logger:    l,
	}
}

// Set attaches a field to the completion event.
func (o *Operation) Set(key string, value interface{}) *Operation {
	o.Extra[key] = value
	return o
}

// Success logs the operation as completed.
func (o *Operation) Success() {
	o.Status = StatusSuccess
	o.finish(nil)
}

// Fail logs the operation as failed with err.
func (o *Operation) Fail(err error) {
	o.Status = StatusError
	o.finish(err)
}

func (o *Operation) finish(err error) {
	extra := map[string]interface{}{
		"operation_id": o.ID,
		"status":       o.Status,
	}
	for k, v := range o.Extra {
		extra[k] = v
	}
	o.logger.TimedEvent(o.Name, o.StartedAt, extra, err)
}

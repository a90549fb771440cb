// Package notify holds transient user notifications. Nothing is persisted;
// a notification lives until it is dismissed or its TTL passes.
package notify

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level represents notification severity
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one transient message.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	Timestamp time.Time
	Dismissed bool
}

// Notifier is the write side used by controllers.
type Notifier interface {
	Notify(level Level, message string)
}

// DefaultTTL is how long a notification stays active.
const DefaultTTL = 4 * time.Second

// Center keeps recent notifications.
type Center struct {
	mu     sync.RWMutex
	items  []Notification
	max    int
	ttl    time.Duration
	now    func() time.Time
	onPost func(Notification)
}

var _ Notifier = (*Center)(nil)

// Option configures a Center.
type Option func(*Center)

// WithTTL sets the active lifetime of a notification.
func WithTTL(d time.Duration) Option {
	return func(c *Center) {
		c.ttl = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		c.now = now
	}
}

// OnPost registers a hook called for every new notification, outside the
// center's lock.
func OnPost(fn func(Notification)) Option {
	return func(c *Center) {
		c.onPost = fn
	}
}

// NewCenter creates an empty notification center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		max: 50,
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify posts a notification.
func (c *Center) Notify(level Level, message string) {
	c.Post(level, message)
}

// Post creates a notification and returns it.
func (c *Center) Post(level Level, message string) Notification {
	c.mu.Lock()
	n := Notification{
		ID:        ulid.Make().String(),
		Level:     level,
		Message:   message,
		Timestamp: c.now(),
	}
	c.items = append(c.items, n)
	if len(c.items) > c.max {
		c.items = c.items[len(c.items)-c.max:]
	}
	hook := c.onPost
	c.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return n
}

// Dismiss marks a notification as dismissed.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Dismissed = true
			break
		}
	}
}

// Latest returns the newest active notification.
func (c *Center) Latest() (Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	for i := len(c.items) - 1; i >= 0; i-- {
		n := c.items[i]
		if c.active(n, now) {
			return n, true
		}
	}
	return Notification{}, false
}

// Recent returns up to count notifications, oldest first.
func (c *Center) Recent(count int) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if count > len(c.items) {
		count = len(c.items)
	}
	out := make([]Notification, count)
	copy(out, c.items[len(c.items)-count:])
	return out
}

func (c *Center) active(n Notification, now time.Time) bool {
	if n.Dismissed {
		return false
	}
	return c.ttl <= 0 || now.Sub(n.Timestamp) < c.ttl
}

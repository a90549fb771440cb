// Package runtime provides graceful shutdown handling for long-running
// commands (the TUI and live watch).
package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joss/debate/internal/logging"
)

// ShutdownFunc is a cleanup function called during shutdown
type ShutdownFunc func(ctx context.Context) error

// ShutdownManager runs registered cleanup handlers once, last registered
// first, when shutdown begins.
type ShutdownManager struct {
	mu          sync.Mutex
	handlers    []namedHandler
	timeout     time.Duration
	shutdownCtx context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	once        sync.Once
	err         error
	log         *logging.Logger
}

type namedHandler struct {
	name string
	fn   ShutdownFunc
}

// DefaultShutdownTimeout bounds the total time spent in cleanup handlers.
const DefaultShutdownTimeout = 5 * time.Second

// NewShutdownManager creates a new shutdown manager with specified timeout
func NewShutdownManager(timeout time.Duration) *ShutdownManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownManager{
		timeout:     timeout,
		shutdownCtx: ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		log:         logging.New("runtime"),
	}
}

// Register adds a cleanup handler to be called during shutdown
func (m *ShutdownManager) Register(name string, fn ShutdownFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, namedHandler{name: name, fn: fn})
}

// RegisterSimple adds a simple cleanup function (no error return)
func (m *ShutdownManager) RegisterSimple(name string, fn func()) {
	m.Register(name, func(ctx context.Context) error {
		fn()
		return nil
	})
}

// Context returns a context that is cancelled when shutdown begins
func (m *ShutdownManager) Context() context.Context {
	return m.shutdownCtx
}

// Done returns a channel that's closed when shutdown is complete
func (m *ShutdownManager) Done() <-chan struct{} {
	return m.done
}

// ListenForSignals starts shutdown on SIGINT or SIGTERM. The returned
// function stops listening.
func (m *ShutdownManager) ListenForSignals() (stop func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	quit := make(chan struct{})

	go func() {
		defer logging.Recover("runtime")
		select {
		case sig := <-sigChan:
			m.log.Info("signal_received", map[string]interface{}{"signal": sig.String()})
			m.Shutdown()
		case <-quit:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(quit)
		})
	}
}

// Shutdown cancels Context and runs the handlers. Only the first call does
// any work; every call returns the joined handler errors.
func (m *ShutdownManager) Shutdown() error {
	m.once.Do(func() {
		m.err = m.performShutdown()
	})
	<-m.done
	return m.err
}

func (m *ShutdownManager) performShutdown() error {
	defer close(m.done)
	m.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.mu.Lock()
	handlers := make([]namedHandler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	var errs []error
	for i := len(handlers) - 1; i >= 0; i-- {
		h := handlers[i]
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s: skipped: %w", h.name, ctx.Err()))
			continue
		}

		start := time.Now()
		err := m.run(ctx, h)
		m.log.TimedEvent("shutdown_handler", start, map[string]interface{}{"handler": h.name}, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	return errors.Join(errs...)
}

// run calls one handler, giving up when ctx expires.
func (m *ShutdownManager) run(ctx context.Context, h namedHandler) error {
	result := make(chan error, 1)
	go func() {
		result <- logging.Guard("runtime", func() error {
			return h.fn(ctx)
		})
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForShutdown blocks until shutdown is complete
func (m *ShutdownManager) WaitForShutdown() {
	<-m.done
}

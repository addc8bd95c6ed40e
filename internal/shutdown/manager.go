package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"image-workbench/internal/logger"
)

const defaultComponentTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function to Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

type entry struct {
	name      string
	component Shutdownable
}

// Manager closes registered components in reverse registration order,
// either on a signal or on an explicit Shutdown call. Only the first call
// does any work.
type Manager struct {
	components []entry
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		logger:  log,
		timeout: defaultComponentTimeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetTimeout bounds how long a single component may take to stop.
func (m *Manager) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.timeout = d
	}
}

func (m *Manager) Register(name string, component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, entry{name: name, component: component})
}

// Listen shuts down on SIGINT or SIGTERM and then calls onSignal, if set,
// so the caller can stop its main loop.
func (m *Manager) Listen(onSignal func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
			if onSignal != nil {
				onSignal()
			}
		case <-m.done:
		}
		signal.Stop(sigChan)
	}()
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	m.cancel()

	for i := len(m.components) - 1; i >= 0; i-- {
		e := m.components[i]

		done := make(chan struct{})
		go func() {
			defer close(done)
			e.component.Shutdown()
		}()

		select {
		case <-done:
			m.logger.Debug("ShutdownManager", "component stopped", map[string]interface{}{
				"component": e.name,
			})
		case <-time.After(m.timeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component": e.name,
			})
		}
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}

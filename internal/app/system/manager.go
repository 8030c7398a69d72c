package system

import (
	"context"
	"fmt"
	"sync"
)

// Manager starts registered services in registration order and stops them in
// reverse order.
type Manager struct {
	mu       sync.Mutex
	services []Service
	names    map[string]struct{}
	started  bool
}

// NewManager creates an empty service manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]struct{})}
}

// Register adds a service. Registration is rejected after Start and for
// duplicate names.
func (m *Manager) Register(svc Service) error {
	if svc == nil {
		return fmt.Errorf("service is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("cannot register %s: manager already started", svc.Name())
	}
	if _, exists := m.names[svc.Name()]; exists {
		return fmt.Errorf("service %s already registered", svc.Name())
	}
	m.names[svc.Name()] = struct{}{}
	m.services = append(m.services, svc)
	return nil
}

// Start begins all registered services. On failure the services already
// started are stopped before returning.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	services := append([]Service(nil), m.services...)
	m.mu.Unlock()

	for i, svc := range services {
		if err := svc.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = services[j].Stop(ctx)
			}
			m.mu.Lock()
			m.started = false
			m.mu.Unlock()
			return fmt.Errorf("start %s: %w", svc.Name(), err)
		}
	}
	return nil
}

// Stop stops all services in reverse registration order, returning the first
// error encountered after attempting every stop.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	services := append([]Service(nil), m.services...)
	m.mu.Unlock()

	var firstErr error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop %s: %w", services[i].Name(), err)
		}
	}
	return firstErr
}

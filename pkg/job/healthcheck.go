package job

import (
	"context"
	"fmt"
)

// Ping reports whether the manager processes jobs and its pool answers.
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil {
		return fmt.Errorf("%w: no manager", ErrUnavailable)
	}
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		return fmt.Errorf("%w: %w", ErrUnavailable, ErrNotStarted)
	}
	if err := m.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Healthcheck adapts m.Ping to a readiness check.
func Healthcheck(m *Manager) func(ctx context.Context) error {
	return m.Ping
}

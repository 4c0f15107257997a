//go:build integration

// Package containers starts Docker-backed dependencies for integration
// tests. Each dependency is started once per test binary on first use.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out shared containers.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	kafka    *KafkaContainer
}

var (
	globalManager *Manager
	initOnce      sync.Once
)

// GetManager returns the process-wide manager.
func GetManager() *Manager {
	initOnce.Do(func() {
		globalManager = &Manager{}
	})
	return globalManager
}

// GetPostgres returns the shared Postgres container with the registration
// schema applied.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	return lazyStart(&m.mu, &m.postgres, func() *PostgresContainer { return NewPostgresContainer(t) })
}

// GetKafka returns the shared Kafka-compatible broker.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return lazyStart(&m.mu, &m.kafka, func() *KafkaContainer { return NewKafkaContainer(t) })
}

func lazyStart[T any](mu *sync.Mutex, slot **T, start func() *T) *T {
	mu.Lock()
	defer mu.Unlock()
	if *slot == nil {
		*slot = start()
	}
	return *slot
}

package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/cache"
	"github.com/taskflow/taskflow-api/internal/model"
	"github.com/taskflow/taskflow-api/internal/repo"
)

// Manager hands out one Store per owner, loading the collection from the
// repository (through the list cache when one is configured) on first use.
type Manager struct {
	repo   repo.TaskRepository
	cache  *cache.TaskCache // nil disables caching
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(r repo.TaskRepository, c *cache.TaskCache, logger *zap.Logger) *Manager {
	return &Manager{
		repo:   r,
		cache:  c,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// ForOwner returns the owner's store, loading it if this is the first
// request of the session.
func (m *Manager) ForOwner(ctx context.Context, ownerID string) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.stores[ownerID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	tasks, err := m.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[ownerID]; ok {
		// Lost the load race; the winner's store is authoritative.
		return s, nil
	}
	s := newStore(ownerID, tasks, m.repo, m.logger, m.invalidator(ownerID))
	m.stores[ownerID] = s
	return s, nil
}

// Evict drops the owner's session store, forcing a reload on next access.
func (m *Manager) Evict(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, ownerID)
}

func (m *Manager) load(ctx context.Context, ownerID string) ([]model.Task, error) {
	if m.cache == nil {
		return m.repo.ListTasks(ctx, ownerID)
	}
	return m.cache.Fetch(ctx, ownerID, func(ctx context.Context) ([]model.Task, error) {
		return m.repo.ListTasks(ctx, ownerID)
	})
}

func (m *Manager) invalidator(ownerID string) func(context.Context) {
	if m.cache == nil {
		return nil
	}
	return func(ctx context.Context) {
		if err := m.cache.Invalidate(ctx, ownerID); err != nil {
			m.logger.Warn("task cache invalidation failed",
				zap.String("owner_id", ownerID),
				zap.Error(err),
			)
		}
	}
}

// Package store holds the per-owner task collection and the mutation rules
// that change it. Mutations are confirmed-only: the remote repository is
// written first and the in-memory collection only changes after the write
// is acknowledged, so local state never drifts ahead of the store.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/model"
	"github.com/taskflow/taskflow-api/internal/repo"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrValidation = errors.New("validation error")
)

// Store is one owner's task collection, ordered by the Order field.
type Store struct {
	ownerID string
	repo    repo.TaskRepository
	logger  *zap.Logger
	now     func() time.Time

	onChange func(ctx context.Context) // cache invalidation hook, may be nil

	// HTTP handlers and the focus runner may touch a store concurrently
	mu    sync.Mutex
	tasks []model.Task
}

func newStore(ownerID string, tasks []model.Task, r repo.TaskRepository, logger *zap.Logger, onChange func(context.Context)) *Store {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
	s := &Store{
		ownerID:  ownerID,
		repo:     r,
		logger:   logger,
		now:      time.Now,
		onChange: onChange,
		tasks:    tasks,
	}
	return s
}

// Snapshot returns a copy of the collection in order. Derivation functions
// read this copy; nothing retains derived state across mutations.
func (s *Store) Snapshot() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	return s.tasks[i], nil
}

// Create validates the draft, persists a new task and appends it at the
// end of the current ordering.
func (s *Store) Create(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return model.Task{}, ErrValidation
	}
	if draft.Priority != "" && !draft.Priority.Valid() {
		return model.Task{}, ErrValidation
	}
	if draft.Category != "" && !draft.Category.Valid() {
		return model.Task{}, ErrValidation
	}
	if draft.IsRecurring && draft.RecurrencePattern != "" && !draft.RecurrencePattern.Valid() {
		return model.Task{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := model.Task{
		ID:                uuid.NewString(),
		OwnerID:           s.ownerID,
		Title:             draft.Title,
		Description:       draft.Description,
		Priority:          draft.Priority,
		Category:          draft.Category,
		Status:            model.StatusPending,
		DueDate:           draft.DueDate,
		CreatedAt:         now,
		UpdatedAt:         now,
		IsRecurring:       draft.IsRecurring,
		RecurrencePattern: draft.RecurrencePattern,
		Order:             len(s.tasks),
		IsUrgent:          draft.IsUrgent,
		IsImportant:       draft.IsImportant,
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Category == "" {
		t.Category = model.CategoryOther
	}

	created, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return model.Task{}, err
	}

	s.tasks = append(s.tasks, created)
	s.changed(ctx)
	return created, nil
}

// Update applies a partial edit. The title, when patched, must stay
// non-empty. UpdatedAt is refreshed on success.
func (s *Store) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Task{}, ErrValidation
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return model.Task{}, ErrValidation
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return model.Task{}, ErrValidation
	}
	if patch.RecurrencePattern != nil && *patch.RecurrencePattern != "" && !patch.RecurrencePattern.Valid() {
		return model.Task{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}

	next := s.tasks[i]
	applyPatch(&next, patch)
	next.UpdatedAt = s.now()

	if err := s.repo.UpdateTask(ctx, next); err != nil {
		return model.Task{}, err
	}

	s.tasks[i] = next
	s.changed(ctx)
	return next, nil
}

// Toggle flips the task's status. CompletedAt is set together with the
// pending->completed flip and cleared with the reverse one; UpdatedAt is
// refreshed either way.
func (s *Store) Toggle(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}

	next := s.tasks[i]
	now := s.now()
	if next.Status == model.StatusCompleted {
		next.Status = model.StatusPending
		next.CompletedAt = nil
	} else {
		next.Status = model.StatusCompleted
		at := now
		next.CompletedAt = &at
	}
	next.UpdatedAt = now

	if err := s.repo.UpdateTask(ctx, next); err != nil {
		return model.Task{}, err
	}

	s.tasks[i] = next
	s.changed(ctx)
	return next, nil
}

// Delete removes the task and renumbers the remaining orders contiguously.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}

	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}

	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	if err := s.renumber(ctx); err != nil {
		// Orders will be compacted again on the next reorder; the removal
		// itself already committed.
		s.logger.Warn("order renumber after delete failed", zap.Error(err))
	}
	s.changed(ctx)
	return nil
}

// Reorder removes the task at src and reinserts it at dst, then renumbers
// the whole collection 0..n-1. Splice semantics over the full list, not a
// filtered subset. UpdatedAt is deliberately untouched.
func (s *Store) Reorder(ctx context.Context, src, dst int) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tasks)
	if src < 0 || src >= n || dst < 0 || dst >= n {
		return nil, ErrValidation
	}
	if src == dst {
		return s.snapshotLocked(), nil
	}

	next := make([]model.Task, n)
	copy(next, s.tasks)
	moved := next[src]
	next = append(next[:src], next[src+1:]...)
	next = append(next[:dst], append([]model.Task{moved}, next[dst:]...)...)

	orders := make(map[string]int, n)
	for i := range next {
		next[i].Order = i
		orders[next[i].ID] = i
	}

	if err := s.repo.ReplaceOrders(ctx, s.ownerID, orders); err != nil {
		return nil, err
	}

	s.tasks = next
	s.changed(ctx)
	return s.snapshotLocked(), nil
}

// MoveToQuadrant pins the task's urgency/importance to a quadrant's fixed
// flags. A move into the quadrant the task already occupies writes nothing.
func (s *Store) MoveToQuadrant(ctx context.Context, id string, urgent, important bool) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}

	if s.tasks[i].IsUrgent == urgent && s.tasks[i].IsImportant == important {
		return s.tasks[i], nil
	}

	next := s.tasks[i]
	next.IsUrgent = urgent
	next.IsImportant = important
	next.UpdatedAt = s.now()

	if err := s.repo.UpdateTask(ctx, next); err != nil {
		return model.Task{}, err
	}

	s.tasks[i] = next
	s.changed(ctx)
	return next, nil
}

// Share grants uid the given permission on the task, last writer wins.
func (s *Store) Share(ctx context.Context, id, uid string, p model.Permission) (model.Task, error) {
	if uid == "" || !p.Valid() {
		return model.Task{}, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}

	next := s.tasks[i]
	shared := make(map[string]model.Permission, len(next.SharedWith)+1)
	for k, v := range next.SharedWith {
		shared[k] = v
	}
	shared[uid] = p
	next.SharedWith = shared
	next.UpdatedAt = s.now()

	if err := s.repo.UpdateTask(ctx, next); err != nil {
		return model.Task{}, err
	}

	s.tasks[i] = next
	s.changed(ctx)
	return next, nil
}

// Unshare revokes uid's access to the task.
func (s *Store) Unshare(ctx context.Context, id, uid string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}

	next := s.tasks[i]
	if _, ok := next.SharedWith[uid]; !ok {
		return next, nil
	}
	shared := make(map[string]model.Permission, len(next.SharedWith))
	for k, v := range next.SharedWith {
		if k != uid {
			shared[k] = v
		}
	}
	next.SharedWith = shared
	next.UpdatedAt = s.now()

	if err := s.repo.UpdateTask(ctx, next); err != nil {
		return model.Task{}, err
	}

	s.tasks[i] = next
	s.changed(ctx)
	return next, nil
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) renumber(ctx context.Context) error {
	orders := make(map[string]int, len(s.tasks))
	for i := range s.tasks {
		s.tasks[i].Order = i
		orders[s.tasks[i].ID] = i
	}
	return s.repo.ReplaceOrders(ctx, s.ownerID, orders)
}

func (s *Store) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx)
	}
}

func applyPatch(t *model.Task, p model.TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurrencePattern != nil {
		t.RecurrencePattern = *p.RecurrencePattern
	}
	if p.IsUrgent != nil {
		t.IsUrgent = *p.IsUrgent
	}
	if p.IsImportant != nil {
		t.IsImportant = *p.IsImportant
	}
}

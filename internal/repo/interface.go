package repo

import (
	"context"

	"github.com/taskflow/taskflow-api/internal/model"
)

// TaskRepository is the narrow surface of the remote task store. Callers
// treat every write as fire-and-await: no retries, a definite success or
// failure per call.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, ownerID string) ([]model.Task, error)
	// ReplaceOrders rewrites the order index for every listed task in one
	// round trip, keeping the contiguity invariant cheap to persist.
	ReplaceOrders(ctx context.Context, ownerID string, orders map[string]int) error
}

// UserRepository stores identities for the auth layer.
type UserRepository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow/taskflow-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = `id, owner_id, title, description, priority, category, status,
	due_date, created_at, updated_at, completed_at,
	is_recurring, recurrence_pattern, sort_order, is_urgent, is_important, shared_with`

// TaskRepo is the Postgres-backed task store.
type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, priority, category, status,
			due_date, created_at, updated_at, completed_at,
			is_recurring, recurrence_pattern, sort_order, is_urgent, is_important, shared_with)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), $14, $15, $16, $17)
		RETURNING `+taskColumns+`
	`, t.ID, t.OwnerID, t.Title, t.Description, t.Priority, t.Category, t.Status,
		t.DueDate, t.CreatedAt, t.UpdatedAt, t.CompletedAt,
		t.IsRecurring, string(t.RecurrencePattern), t.Order, t.IsUrgent, t.IsImportant, t.SharedWith,
	).Scan(scanTargets(&t)...)
	return t, r.mapError(err)
}

func (r *TaskRepo) UpdateTask(ctx context.Context, t model.Task) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, priority = $4, category = $5, status = $6,
			due_date = $7, updated_at = $8, completed_at = $9,
			is_recurring = $10, recurrence_pattern = NULLIF($11, ''),
			is_urgent = $12, is_important = $13, shared_with = $14
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Priority, t.Category, t.Status,
		t.DueDate, t.UpdatedAt, t.CompletedAt,
		t.IsRecurring, string(t.RecurrencePattern),
		t.IsUrgent, t.IsImportant, t.SharedWith)
	if err != nil {
		return r.mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) DeleteTask(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1
		ORDER BY sort_order, created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(scanTargets(&t)...); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ReplaceOrders rewrites every listed task's sort position in one
// transaction so a reorder either fully commits or not at all.
func (r *TaskRepo) ReplaceOrders(ctx context.Context, ownerID string, orders map[string]int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for id, ord := range orders {
		batch.Queue("UPDATE tasks SET sort_order = $1 WHERE id = $2 AND owner_id = $3", ord, id, ownerID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("replace orders: %w", err)
	}
	return tx.Commit(ctx)
}

// scanTargets keeps the column list and scan destinations in one place.
func scanTargets(t *model.Task) []any {
	return []any{
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Category, &t.Status,
		&t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
		&t.IsRecurring, &recurrenceScanner{&t.RecurrencePattern}, &t.Order, &t.IsUrgent, &t.IsImportant, &t.SharedWith,
	}
}

// recurrenceScanner maps a NULL recurrence_pattern column onto the empty
// pattern.
type recurrenceScanner struct {
	dest *model.RecurrencePattern
}

func (s *recurrenceScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.dest = ""
	case string:
		*s.dest = model.RecurrencePattern(v)
	case []byte:
		*s.dest = model.RecurrencePattern(v)
	default:
		return fmt.Errorf("cannot scan recurrence pattern from %T", src)
	}
	return nil
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrorConflict
	}
	return err
}

package views

import (
	"sort"

	"github.com/taskflow/taskflow-api/internal/model"
)

// Board holds the two kanban columns. Within each column tasks keep the
// relative sequence of their Order field.
type Board struct {
	Pending   []model.Task `json:"pending"`
	Completed []model.Task `json:"completed"`
}

// Kanban partitions tasks by status into pending and completed columns.
func Kanban(tasks []model.Task) Board {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	b := Board{
		Pending:   make([]model.Task, 0, len(sorted)),
		Completed: make([]model.Task, 0),
	}
	for _, t := range sorted {
		if t.Status == model.StatusCompleted {
			b.Completed = append(b.Completed, t)
		} else {
			b.Pending = append(b.Pending, t)
		}
	}
	return b
}

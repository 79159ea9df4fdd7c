// Package views derives the presented shapes of a task collection:
// filtered lists, kanban columns, Eisenhower quadrants, calendar buckets
// and analytics aggregates. Every function is pure; time-dependent views
// take an explicit reference time and location so they stay testable.
package views

import "github.com/taskflow/taskflow-api/internal/model"

// Filter returns the order-preserving subset of tasks matching the
// criteria. An empty criteria returns a copy of the input.
func Filter(tasks []model.Task, c model.FilterCriteria) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

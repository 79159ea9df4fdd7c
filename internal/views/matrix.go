package views

import "github.com/taskflow/taskflow-api/internal/model"

// Matrix holds the four Eisenhower quadrants, keyed by the fixed
// (urgent, important) combination of each. Completed tasks are excluded.
type Matrix struct {
	DoFirst   []model.Task `json:"do_first"`  // urgent, important
	Schedule  []model.Task `json:"schedule"`  // not urgent, important
	Delegate  []model.Task `json:"delegate"`  // urgent, not important
	Eliminate []model.Task `json:"eliminate"` // not urgent, not important
}

// Quadrants buckets non-completed tasks by their urgency/importance flags.
// The buckets are disjoint and together cover every pending task.
func Quadrants(tasks []model.Task) Matrix {
	var m Matrix
	for _, t := range tasks {
		if t.Status == model.StatusCompleted {
			continue
		}
		switch {
		case t.IsUrgent && t.IsImportant:
			m.DoFirst = append(m.DoFirst, t)
		case !t.IsUrgent && t.IsImportant:
			m.Schedule = append(m.Schedule, t)
		case t.IsUrgent && !t.IsImportant:
			m.Delegate = append(m.Delegate, t)
		default:
			m.Eliminate = append(m.Eliminate, t)
		}
	}
	return m
}

// QuadrantFlags returns the fixed flag pair for a named quadrant.
// Unknown names report ok=false.
func QuadrantFlags(name string) (urgent, important, ok bool) {
	switch name {
	case "do_first":
		return true, true, true
	case "schedule":
		return false, true, true
	case "delegate":
		return true, false, true
	case "eliminate":
		return false, false, true
	}
	return false, false, false
}

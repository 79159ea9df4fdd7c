package model

import "strings"

// FilterAll matches any value for the status/priority/category filters.
const FilterAll = "all"

// FilterCriteria selects a subset of a task collection. Zero value is the
// identity filter.
type FilterCriteria struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	Search   string `json:"search"`
}

func (f FilterCriteria) statusActive() bool {
	return f.Status != "" && f.Status != FilterAll
}

func (f FilterCriteria) priorityActive() bool {
	return f.Priority != "" && f.Priority != FilterAll
}

func (f FilterCriteria) categoryActive() bool {
	return f.Category != "" && f.Category != FilterAll
}

// Matches reports whether the task passes every active filter. Search is a
// case-insensitive substring match over title and description.
func (f FilterCriteria) Matches(t Task) bool {
	if f.statusActive() && string(t.Status) != f.Status {
		return false
	}
	if f.priorityActive() && string(t.Priority) != f.Priority {
		return false
	}
	if f.categoryActive() && string(t.Category) != f.Category {
		return false
	}
	if f.Search != "" && !containsFold(t.Title, f.Search) && !containsFold(t.Description, f.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

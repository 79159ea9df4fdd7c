package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

// Categories lists every valid category, used by aggregate views.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
	RecurrenceYearly  RecurrencePattern = "yearly"
)

func (r RecurrencePattern) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

type Permission string

const (
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionAdmin Permission = "admin"
)

func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionAdmin:
		return true
	}
	return false
}

// Task is the canonical entity. CompletedAt is non-nil exactly when Status
// is completed. Order is unique and contiguous across the owner's full
// collection after every reorder.
type Task struct {
	ID                string                `json:"id"`
	OwnerID           string                `json:"owner_id"`
	Title             string                `json:"title"`
	Description       string                `json:"description,omitempty"`
	Priority          Priority              `json:"priority"`
	Category          Category              `json:"category"`
	Status            Status                `json:"status"`
	DueDate           *time.Time            `json:"due_date,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	CompletedAt       *time.Time            `json:"completed_at,omitempty"`
	IsRecurring       bool                  `json:"is_recurring"`
	RecurrencePattern RecurrencePattern     `json:"recurrence_pattern,omitempty"`
	Order             int                   `json:"order"`
	IsUrgent          bool                  `json:"is_urgent"`
	IsImportant       bool                  `json:"is_important"`
	SharedWith        map[string]Permission `json:"shared_with,omitempty"`
}

// TaskDraft is a task before it has an identity: the shape taken by create
// requests and returned by AI suggestions.
type TaskDraft struct {
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Priority          Priority          `json:"priority"`
	Category          Category          `json:"category"`
	DueDate           *time.Time        `json:"due_date,omitempty"`
	IsRecurring       bool              `json:"is_recurring"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern,omitempty"`
	IsUrgent          bool              `json:"is_urgent"`
	IsImportant       bool              `json:"is_important"`
}

// TaskPatch carries a partial update; nil fields are left untouched.
// ClearDueDate unschedules the task since a nil DueDate just means "no change".
type TaskPatch struct {
	Title             *string            `json:"title,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Priority          *Priority          `json:"priority,omitempty"`
	Category          *Category          `json:"category,omitempty"`
	DueDate           *time.Time         `json:"due_date,omitempty"`
	ClearDueDate      bool               `json:"clear_due_date,omitempty"`
	IsRecurring       *bool              `json:"is_recurring,omitempty"`
	RecurrencePattern *RecurrencePattern `json:"recurrence_pattern,omitempty"`
	IsUrgent          *bool              `json:"is_urgent,omitempty"`
	IsImportant       *bool              `json:"is_important,omitempty"`
}

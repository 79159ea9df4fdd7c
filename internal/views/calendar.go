package views

import (
	"sort"
	"time"

	"github.com/taskflow/taskflow-api/internal/model"
)

// DayKeyFormat is the stable bucket key for calendar cells.
const DayKeyFormat = "2006-01-02"

// maxVisiblePerDay caps how many tasks a day cell lists before collapsing
// the rest into a counter.
const maxVisiblePerDay = 3

// DayCell is one calendar day: up to three tasks by current order plus the
// count of the ones that did not fit.
type DayCell struct {
	Tasks []model.Task `json:"tasks"`
	More  int          `json:"more"`
}

// CalendarBuckets groups tasks by the local calendar day of their due date,
// keyed as YYYY-MM-DD. Unscheduled tasks are excluded; time-of-day is
// ignored.
func CalendarBuckets(tasks []model.Task, loc *time.Location) map[string]DayCell {
	byDay := make(map[string][]model.Task)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		key := t.DueDate.In(loc).Format(DayKeyFormat)
		byDay[key] = append(byDay[key], t)
	}

	out := make(map[string]DayCell, len(byDay))
	for key, day := range byDay {
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].Order < day[j].Order
		})
		cell := DayCell{Tasks: day}
		if len(day) > maxVisiblePerDay {
			cell.Tasks = day[:maxVisiblePerDay]
			cell.More = len(day) - maxVisiblePerDay
		}
		out[key] = cell
	}
	return out
}

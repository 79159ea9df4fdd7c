package views

import (
	"math"
	"sort"
	"time"

	"github.com/taskflow/taskflow-api/internal/model"
)

// DayCount is one bar of the weekly completion chart.
type DayCount struct {
	Day   string `json:"day"` // Mon..Sun
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CategoryShare is a completed-task count for one category plus its share
// of all completions.
type CategoryShare struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
	Percent  int            `json:"percent"`
}

// WeekDelta compares this week's completions against last week's.
type WeekDelta struct {
	ThisWeek int `json:"this_week"`
	LastWeek int `json:"last_week"`
	Delta    int `json:"delta"`
	Percent  int `json:"percent"`
}

// startOfWeek returns local midnight of the Monday of now's week.
func startOfWeek(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return day.AddDate(0, 0, -offset)
}

// WeeklySeries counts completions per local day for the Monday..Sunday
// window containing now, in day order.
func WeeklySeries(tasks []model.Task, now time.Time, loc *time.Location) []DayCount {
	week := startOfWeek(now, loc)

	series := make([]DayCount, 7)
	for i := range series {
		d := week.AddDate(0, 0, i)
		series[i] = DayCount{
			Day:  d.Format("Mon"),
			Date: d.Format(DayKeyFormat),
		}
	}

	for _, t := range tasks {
		if t.Status != model.StatusCompleted || t.CompletedAt == nil {
			continue
		}
		key := t.CompletedAt.In(loc).Format(DayKeyFormat)
		for i := range series {
			if series[i].Date == key {
				series[i].Count++
				break
			}
		}
	}
	return series
}

// CategoryShares counts completed tasks per category, sorted descending by
// count. Percentages are shares of all completions; zero completions yields
// zero percent everywhere rather than dividing by zero.
func CategoryShares(tasks []model.Task) []CategoryShare {
	counts := make(map[model.Category]int)
	total := 0
	for _, t := range tasks {
		if t.Status != model.StatusCompleted {
			continue
		}
		counts[t.Category]++
		total++
	}

	shares := make([]CategoryShare, 0, len(counts))
	for cat, n := range counts {
		s := CategoryShare{Category: cat, Count: n}
		if total > 0 {
			s.Percent = int(math.Round(float64(n) / float64(total) * 100))
		}
		shares = append(shares, s)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}

// OverdueCount counts pending tasks whose due date is strictly before now.
func OverdueCount(tasks []model.Task, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if t.Status == model.StatusPending && t.DueDate != nil && t.DueDate.Before(now) {
			n++
		}
	}
	return n
}

// CompletionDelta computes the week-over-week completion change. The
// percentage is special-cased: 100 when last week was empty and this week
// is not, 0 when both are empty.
func CompletionDelta(tasks []model.Task, now time.Time, loc *time.Location) WeekDelta {
	thisWeek := startOfWeek(now, loc)
	lastWeek := thisWeek.AddDate(0, 0, -7)
	nextWeek := thisWeek.AddDate(0, 0, 7)

	var d WeekDelta
	for _, t := range tasks {
		if t.Status != model.StatusCompleted || t.CompletedAt == nil {
			continue
		}
		at := t.CompletedAt.In(loc)
		switch {
		case !at.Before(thisWeek) && at.Before(nextWeek):
			d.ThisWeek++
		case !at.Before(lastWeek) && at.Before(thisWeek):
			d.LastWeek++
		}
	}

	d.Delta = d.ThisWeek - d.LastWeek
	switch {
	case d.LastWeek > 0:
		d.Percent = int(math.Round(float64(d.Delta) / float64(d.LastWeek) * 100))
	case d.ThisWeek > 0:
		d.Percent = 100
	}
	return d
}

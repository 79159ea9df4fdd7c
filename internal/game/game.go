// Package game derives the gamification layer from the task collection and
// the focus-session history: achievements, completion streaks, points,
// level and the rotating daily challenges. Everything is recomputed from
// canonical data; nothing here is stored.
package game

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/model"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"` // tasks | habits | focus
	Rarity      Rarity `json:"rarity"`
	Points      int    `json:"points"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
}

type Challenge struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Progress     int       `json:"progress"`
	Target       int       `json:"target"`
	Completed    bool      `json:"completed"`
	RewardPoints int       `json:"reward_points"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Summary is the whole gamification dashboard for one owner.
type Summary struct {
	Achievements []Achievement `json:"achievements"`
	Challenges   []Challenge   `json:"challenges"`
	Streak       int           `json:"streak"`
	Points       int           `json:"points"`
	Level        int           `json:"level"`
}

// BuildSummary computes the full dashboard at one reference time.
func BuildSummary(tasks []model.Task, focusDone []time.Time, now time.Time, loc *time.Location) Summary {
	streak := Streak(tasks, now, loc)
	achievements := Achievements(tasks, focusDone, streak, now, loc)
	points := Points(achievements)
	return Summary{
		Achievements: achievements,
		Challenges:   DailyChallenges(tasks, focusDone, now, loc),
		Streak:       streak,
		Points:       points,
		Level:        Level(points),
	}
}

// Streak counts consecutive local days with at least one completion,
// walking back from today. A streak survives when yesterday had a
// completion but today has none yet.
func Streak(tasks []model.Task, now time.Time, loc *time.Location) int {
	days := make(map[string]bool)
	for _, t := range tasks {
		if t.CompletedAt != nil {
			days[t.CompletedAt.In(loc).Format("2006-01-02")] = true
		}
	}

	day := dayStart(now, loc)
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1) // grace for today
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// Achievements evaluates the fixed catalog against current data.
func Achievements(tasks []model.Task, focusDone []time.Time, streak int, now time.Time, loc *time.Location) []Achievement {
	completed := 0
	highCompleted := 0
	var satDone, sunDone bool
	weekStart := dayStart(now, loc).AddDate(0, 0, -((int(dayStart(now, loc).Weekday()) + 6) % 7))
	for _, t := range tasks {
		if t.Status != model.StatusCompleted || t.CompletedAt == nil {
			continue
		}
		completed++
		if t.Priority == model.PriorityHigh {
			highCompleted++
		}
		at := t.CompletedAt.In(loc)
		if !at.Before(weekStart) {
			switch at.Weekday() {
			case time.Saturday:
				satDone = true
			case time.Sunday:
				sunDone = true
			}
		}
	}

	weekend := 0
	if satDone {
		weekend++
	}
	if sunDone {
		weekend++
	}

	catalog := []Achievement{
		{ID: "first-task", Name: "Getting Started", Description: "Complete your first task",
			Category: "tasks", Rarity: RarityCommon, Points: 10, Progress: completed, Target: 1},
		{ID: "task-master", Name: "Task Master", Description: "Complete 10 tasks",
			Category: "tasks", Rarity: RarityUncommon, Points: 25, Progress: completed, Target: 10},
		{ID: "focused-mind", Name: "Focused Mind", Description: "Complete 5 focus sessions",
			Category: "focus", Rarity: RarityUncommon, Points: 25, Progress: len(focusDone), Target: 5},
		{ID: "consistent-effort", Name: "Consistent Effort", Description: "Keep a 5 day completion streak",
			Category: "habits", Rarity: RarityUncommon, Points: 30, Progress: streak, Target: 5},
		{ID: "priority-manager", Name: "Priority Manager", Description: "Complete 5 high priority tasks",
			Category: "tasks", Rarity: RarityRare, Points: 50, Progress: highCompleted, Target: 5},
		{ID: "weekend-warrior", Name: "Weekend Warrior", Description: "Complete tasks on both Saturday and Sunday",
			Category: "habits", Rarity: RarityRare, Points: 50, Progress: weekend, Target: 2},
		{ID: "productivity-legend", Name: "Productivity Legend", Description: "Keep a 7 day completion streak",
			Category: "habits", Rarity: RarityLegendary, Points: 100, Progress: streak, Target: 7},
	}

	for i := range catalog {
		if catalog[i].Progress > catalog[i].Target {
			catalog[i].Progress = catalog[i].Target
		}
		catalog[i].Unlocked = catalog[i].Progress >= catalog[i].Target
	}
	return catalog
}

// Points sums the values of unlocked achievements.
func Points(achievements []Achievement) int {
	total := 0
	for _, a := range achievements {
		if a.Unlocked {
			total += a.Points
		}
	}
	return total
}

// Level grants one level per 100 points, starting at 1.
func Level(points int) int {
	return points/100 + 1
}

// DailyChallenges builds the four rotating challenges for the current
// local day. All expire at the next midnight.
func DailyChallenges(tasks []model.Task, focusDone []time.Time, now time.Time, loc *time.Location) []Challenge {
	today := dayStart(now, loc)
	tomorrow := today.AddDate(0, 0, 1)

	completedToday := 0
	backlogCleared := 0
	plannedAhead := 0
	for _, t := range tasks {
		if t.CompletedAt != nil {
			at := t.CompletedAt.In(loc)
			if !at.Before(today) && at.Before(tomorrow) {
				completedToday++
				if t.DueDate != nil && t.DueDate.In(loc).Before(today) {
					backlogCleared++
				}
			}
		}
		created := t.CreatedAt.In(loc)
		if !created.Before(today) && created.Before(tomorrow) &&
			t.DueDate != nil && t.DueDate.In(loc).After(tomorrow) {
			plannedAhead++
		}
	}

	focusToday := 0
	for _, at := range focusDone {
		local := at.In(loc)
		if !local.Before(today) && local.Before(tomorrow) {
			focusToday++
		}
	}

	challenges := []Challenge{
		{ID: "complete-3", Title: "Complete 3 tasks today",
			Description: "Finish any 3 tasks on your list today",
			Progress:    completedToday, Target: 3, RewardPoints: 50, ExpiresAt: tomorrow},
		{ID: "focus-25", Title: "Focus for 25 minutes",
			Description: "Complete a focus session",
			Progress:    focusToday, Target: 1, RewardPoints: 30, ExpiresAt: tomorrow},
		{ID: "clear-backlog", Title: "Clear your backlog",
			Description: "Complete 2 overdue tasks",
			Progress:    backlogCleared, Target: 2, RewardPoints: 40, ExpiresAt: tomorrow},
		{ID: "plan-ahead", Title: "Plan ahead",
			Description: "Create 2 new tasks for the future",
			Progress:    plannedAhead, Target: 2, RewardPoints: 25, ExpiresAt: tomorrow},
	}
	for i := range challenges {
		if challenges[i].Progress > challenges[i].Target {
			challenges[i].Progress = challenges[i].Target
		}
		challenges[i].Completed = challenges[i].Progress >= challenges[i].Target
	}
	return challenges
}

func dayStart(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

package journal

import (
	"time"

	"github.com/google/uuid"
)

type Goal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category,omitempty"`
	Target      float64    `json:"target,omitempty"`
	Progress    float64    `json:"progress,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Habit struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Streak      int        `json:"streak"`
	LastChecked *time.Time `json:"lastChecked,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// GoalsData is the goals screen snapshot stored under one user key.
type GoalsData struct {
	Goals  []Goal  `json:"goals"`
	Habits []Habit `json:"habits"`
}

type Meal struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type,omitempty"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein,omitempty"`
	Carbs    float64   `json:"carbs,omitempty"`
	Fat      float64   `json:"fat,omitempty"`
	Date     time.Time `json:"date"`
}

type Nutrition struct {
	Meals       []Meal `json:"meals"`
	WaterIntake int    `json:"waterIntake"`
	WaterTarget int    `json:"waterTarget,omitempty"`
}

func NewMeal(name, mealType string, calories float64, at time.Time) Meal {
	return Meal{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     mealType,
		Calories: calories,
		Date:     at.UTC(),
	}
}

// CheckIn records a habit completion at now. A check on the day after the
// previous one extends the streak, a repeat check on the same day is a no-op,
// anything else restarts at 1.
func (h Habit) CheckIn(now time.Time, loc *time.Location) Habit {
	if loc == nil {
		loc = time.UTC
	}
	today := CalendarDay(now, loc)
	if h.LastChecked != nil {
		last := CalendarDay(*h.LastChecked, loc)
		switch {
		case last.Equal(today):
			return h
		case last.AddDate(0, 0, 1).Equal(today):
			h.Streak++
		default:
			h.Streak = 1
		}
	} else {
		h.Streak = 1
	}
	checked := now.UTC()
	h.LastChecked = &checked
	return h
}

// CalendarDay truncates t to midnight of its calendar date in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"healthjournal/internal/journal"
	"healthjournal/internal/notify"
)

func (a *App) getGoals(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	data, err := docs.Goals(c.Request.Context())
	if err != nil {
		a.log.Error("load goals failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load goals")
		return
	}
	c.JSON(http.StatusOK, fillGoals(data, a.now()))
}

// putGoals replaces the whole goals snapshot.
func (a *App) putGoals(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	var data journal.GoalsData
	if !mustJSON(c, &data) {
		return
	}
	for _, g := range data.Goals {
		if strings.TrimSpace(g.Title) == "" {
			writeError(c, http.StatusBadRequest, "goal title is required")
			return
		}
	}
	for _, h := range data.Habits {
		if strings.TrimSpace(h.Name) == "" {
			writeError(c, http.StatusBadRequest, "habit name is required")
			return
		}
	}
	data = fillGoals(data, a.now())
	if err := docs.SaveGoals(c.Request.Context(), data); err != nil {
		a.log.Error("save goals failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to save goals")
		return
	}
	a.publish(c.Request.Context(), docs.UserID(), notify.KindGoalsChanged, "")
	c.JSON(http.StatusOK, data)
}

// fillGoals assigns missing ids and timestamps and stamps completion times.
func fillGoals(data journal.GoalsData, now time.Time) journal.GoalsData {
	now = now.UTC()
	if data.Goals == nil {
		data.Goals = []journal.Goal{}
	}
	if data.Habits == nil {
		data.Habits = []journal.Habit{}
	}
	for i := range data.Goals {
		g := &data.Goals[i]
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		if g.CreatedAt.IsZero() {
			g.CreatedAt = now
		}
		switch {
		case g.Completed && g.CompletedAt == nil:
			completed := now
			g.CompletedAt = &completed
		case !g.Completed:
			g.CompletedAt = nil
		}
	}
	for i := range data.Habits {
		h := &data.Habits[i]
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		if h.CreatedAt.IsZero() {
			h.CreatedAt = now
		}
	}
	return data
}

func (a *App) checkHabit(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	data, err := docs.Goals(ctx)
	if err != nil {
		a.log.Error("load goals failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load goals")
		return
	}
	loc := time.UTC
	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			writeError(c, http.StatusBadRequest, "Invalid tz")
			return
		}
		loc = parsed
	}

	id := c.Param("id")
	for i := range data.Habits {
		if data.Habits[i].ID != id {
			continue
		}
		data.Habits[i] = data.Habits[i].CheckIn(a.now(), loc)
		if err := docs.SaveGoals(ctx, data); err != nil {
			a.log.Error("save goals failed", "user_id", docs.UserID(), "error", err)
			writeError(c, http.StatusInternalServerError, "Failed to save habit")
			return
		}
		a.publish(ctx, docs.UserID(), notify.KindGoalsChanged, id)
		c.JSON(http.StatusOK, data.Habits[i])
		return
	}
	writeError(c, http.StatusNotFound, "Habit not found")
}

func (a *App) getNutrition(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	data, err := docs.Nutrition(c.Request.Context())
	if err != nil {
		a.log.Error("load nutrition failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load nutrition")
		return
	}
	if data.Meals == nil {
		data.Meals = []journal.Meal{}
	}
	c.JSON(http.StatusOK, data)
}

func (a *App) putNutrition(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	var data journal.Nutrition
	if !mustJSON(c, &data) {
		return
	}
	if data.WaterIntake < 0 || data.WaterTarget < 0 {
		writeError(c, http.StatusBadRequest, "water values must not be negative")
		return
	}
	if data.Meals == nil {
		data.Meals = []journal.Meal{}
	}
	for i := range data.Meals {
		if data.Meals[i].ID == "" {
			data.Meals[i].ID = uuid.NewString()
		}
	}
	if err := docs.SaveNutrition(c.Request.Context(), data); err != nil {
		a.log.Error("save nutrition failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to save nutrition")
		return
	}
	a.publish(c.Request.Context(), docs.UserID(), notify.KindNutritionChanged, "")
	c.JSON(http.StatusOK, data)
}

func (a *App) addMeal(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	var req addMealRequest
	if !mustJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(c, http.StatusBadRequest, "name is required")
		return
	}
	if req.Calories < 0 {
		writeError(c, http.StatusBadRequest, "calories must not be negative")
		return
	}
	at := a.now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		at = parsed
	}
	meal := journal.NewMeal(strings.TrimSpace(req.Name), req.Type, req.Calories, at)
	meal.Protein, meal.Carbs, meal.Fat = req.Protein, req.Carbs, req.Fat

	ctx := c.Request.Context()
	data, err := docs.Nutrition(ctx)
	if err != nil {
		a.log.Error("load nutrition failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load nutrition")
		return
	}
	data.Meals = append(data.Meals, meal)
	if err := docs.SaveNutrition(ctx, data); err != nil {
		a.log.Error("save nutrition failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to save meal")
		return
	}
	a.publish(ctx, docs.UserID(), notify.KindNutritionChanged, meal.ID)
	c.JSON(http.StatusCreated, meal)
}

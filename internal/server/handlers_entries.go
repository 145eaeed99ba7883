package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthjournal/internal/journal"
	"healthjournal/internal/notify"
	"healthjournal/internal/store"
)

func (a *App) listEntries(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	entries, err := docs.Entries(c.Request.Context())
	if err != nil {
		a.log.Error("load entries failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load entries")
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	out := make([]journal.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Deleted() && matchesQuery(e, q) {
			out = append(out, e)
		}
	}
	c.JSON(http.StatusOK, gin.H{"entries": out, "count": len(out)})
}

func (a *App) createEntry(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	var req createEntryRequest
	if !mustJSON(c, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		writeError(c, http.StatusBadRequest, "content is required")
		return
	}
	if len(content) > maxEntryLength {
		writeError(c, http.StatusBadRequest, "content is too long")
		return
	}
	entry := journal.NewEntry(content, a.now())
	if req.Mood != "" {
		mood, ok := journal.ParseMood(req.Mood)
		if !ok {
			writeError(c, http.StatusBadRequest, "Invalid mood")
			return
		}
		entry.Mood = string(mood)
	}
	if !validNumber(req.SleepHours, 24) || !validNumber(req.ExerciseMinutes, 24*60) {
		writeError(c, http.StatusBadRequest, "sleepHours or exerciseMinutes out of range")
		return
	}
	entry.SleepHours = req.SleepHours
	entry.ExerciseMinutes = req.ExerciseMinutes

	if err := docs.AddEntry(c.Request.Context(), entry); err != nil {
		a.log.Error("save entry failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to save entry")
		return
	}
	a.publish(c.Request.Context(), docs.UserID(), notify.KindEntriesChanged, entry.ID)
	c.JSON(http.StatusCreated, entry)
}

func (a *App) deleteEntry(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	err := docs.SoftDeleteEntry(c.Request.Context(), id, a.now())
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "Entry not found")
		return
	}
	if err != nil {
		a.log.Error("delete entry failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to delete entry")
		return
	}
	a.publish(c.Request.Context(), docs.UserID(), notify.KindEntriesChanged, id)
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// extractEntry scores a single text without storing it.
func (a *App) extractEntry(c *gin.Context) {
	var req extractRequest
	if !mustJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(c, http.StatusBadRequest, "content is required")
		return
	}
	raw := journal.Extract(req.Content)
	c.JSON(http.StatusOK, extractResponse{Metrics: raw, Scores: journal.Score(raw)})
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthjournal/internal/analysis"
	"healthjournal/internal/journal"
	"healthjournal/internal/report"
)

const defaultTrendWindow = 7

func (a *App) analyzeEntries(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	var req analyzeRequest
	if c.Request.ContentLength != 0 && !mustJSON(c, &req) {
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = a.cfg.AnalysisDefaultWindow
	}
	if limit > maxAnalyzeLimit {
		limit = maxAnalyzeLimit
	}

	entries, err := docs.Entries(c.Request.Context())
	if err != nil {
		a.log.Error("load entries failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load entries")
		return
	}
	batch := selectEntries(entries, req.EntryIDs, limit)
	if len(batch) == 0 {
		writeError(c, http.StatusBadRequest, "Failed to analyze entries. Please try again.")
		return
	}

	rec := a.orchestrator.Analyze(c.Request.Context(), docs, batch)
	c.JSON(http.StatusOK, rec)
}

// selectEntries returns the live entries named by ids, or the newest limit
// live entries when ids is empty. The result is oldest first.
func selectEntries(entries []journal.Entry, ids []string, limit int) []journal.Entry {
	if len(ids) == 0 {
		return journal.Latest(entries, limit)
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[strings.TrimSpace(id)] = struct{}{}
	}
	picked := make([]journal.Entry, 0, len(ids))
	for _, e := range journal.Live(entries) {
		if _, ok := wanted[e.ID]; ok {
			picked = append(picked, e)
		}
	}
	return picked
}

func (a *App) latestAnalysis(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	rec, found, err := analysis.LoadLatest(c.Request.Context(), docs)
	if err != nil {
		a.log.Error("load latest analysis failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load analysis")
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, "No analysis yet")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *App) analysisHistory(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	history, err := analysis.LoadHistory(c.Request.Context(), docs)
	if err != nil {
		a.log.Error("load analysis history failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load analysis history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history, "count": len(history)})
}

func (a *App) getTrends(c *gin.Context) {
	docs, ok := a.userStore(c)
	if !ok {
		return
	}
	window, valid := queryInt(c.Query("window"), defaultTrendWindow, maxTrendWindow)
	if !valid {
		writeError(c, http.StatusBadRequest, "Invalid window")
		return
	}

	history, err := analysis.LoadHistory(c.Request.Context(), docs)
	if err != nil {
		a.log.Error("load analysis history failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load analysis history")
		return
	}
	view, err := report.Trend(history, c.DefaultQuery("metric", "sleep"), window)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"healthjournal/internal/analysis"
	"healthjournal/internal/report"
	"healthjournal/internal/store"
)

const periodCustom report.Period = "custom"

type reportQuery struct {
	Period   report.Period
	Range    report.DateRange
	Location *time.Location
}

// parseReportQuery reads period, or an explicit start/end pair, plus an
// optional IANA tz used for calendar-day comparisons.
func parseReportQuery(c *gin.Context, now time.Time) (reportQuery, error) {
	loc := time.UTC
	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return reportQuery{}, errors.New("Invalid tz")
		}
		loc = parsed
	}

	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw != "" || endRaw != "" {
		start, err := parseDate(startRaw)
		if err != nil {
			return reportQuery{}, errors.New("start must be YYYY-MM-DD")
		}
		end, err := parseDate(endRaw)
		if err != nil {
			return reportQuery{}, errors.New("end must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return reportQuery{}, errors.New("end must not be before start")
		}
		// Dates are calendar days in loc.
		return reportQuery{
			Period: periodCustom,
			Range: report.DateRange{
				Start: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc),
				End:   time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc),
			},
			Location: loc,
		}, nil
	}

	period, ok := report.ParsePeriod(strings.ToLower(strings.TrimSpace(c.Query("period"))))
	if !ok {
		return reportQuery{}, errors.New("period must be one of week, month, year")
	}
	return reportQuery{Period: period, Range: report.RangeForPeriod(period, now), Location: loc}, nil
}

// loadReportInput reads the three documents a report needs in parallel.
func (a *App) loadReportInput(ctx context.Context, docs *store.UserStore, q reportQuery, now time.Time) (report.Input, error) {
	in := report.Input{Range: q.Range, Now: now, Location: q.Location}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history, err := analysis.LoadHistory(gctx, docs)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		in.History = history
		return nil
	})
	g.Go(func() error {
		goals, err := docs.Goals(gctx)
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		in.Goals, in.Habits = goals.Goals, goals.Habits
		return nil
	})
	g.Go(func() error {
		nutrition, err := docs.Nutrition(gctx)
		if err != nil {
			return fmt.Errorf("load nutrition: %w", err)
		}
		in.Meals = nutrition.Meals
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Input{}, err
	}
	return in, nil
}

func (a *App) buildReport(c *gin.Context) (report.Report, reportQuery, bool) {
	docs, ok := a.userStore(c)
	if !ok {
		return report.Report{}, reportQuery{}, false
	}
	now := a.now()
	q, err := parseReportQuery(c, now)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return report.Report{}, reportQuery{}, false
	}
	in, err := a.loadReportInput(c.Request.Context(), docs, q, now)
	if err != nil {
		a.log.Error("load report input failed", "user_id", docs.UserID(), "error", err)
		writeError(c, http.StatusInternalServerError, "Failed to load report data. Please try again.")
		return report.Report{}, reportQuery{}, false
	}
	return report.Build(in), q, true
}

func (a *App) getReport(c *gin.Context) {
	r, q, ok := a.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": q.Period, "report": r})
}

func (a *App) downloadReport(c *gin.Context) {
	r, q, ok := a.buildReport(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", report.Filename(q.Period, a.now())))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report.RenderText(r, q.Period)))
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"healthjournal/internal/ai"
	"healthjournal/internal/analysis"
	"healthjournal/internal/config"
	"healthjournal/internal/journal"
	"healthjournal/internal/logger"
	"healthjournal/internal/report"
	"healthjournal/internal/store"
)

var (
	dbPath  string
	userID  string
	format  string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".healthjournal", "journal.db")

	rootCmd := &cobra.Command{
		Use:          "journalctl",
		Short:        "Local health journal with analysis and reports",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "database path")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "local", "journal owner id")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "o", "text", "output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log analysis details to stderr")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(trendCmd())
	rootCmd.AddCommand(reportCmd())
	return rootCmd
}

// openStore opens the database and scopes it to the --user owner. The
// returned func closes the database.
func openStore() (*store.UserStore, func(), error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := store.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	docs, err := store.ForUser(db, userID)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return docs, func() { _ = db.Close() }, nil
}

func newLogger() *logger.Logger {
	if !verbose {
		return logger.Nop()
	}
	lg, err := logger.New("dev")
	if err != nil {
		return logger.Nop()
	}
	return lg
}

// emit writes v as JSON or YAML, or calls text for the default format.
func emit(w io.Writer, v any, text func(io.Writer)) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
	}
}

func addCmd() *cobra.Command {
	var (
		mood     string
		sleep    float64
		exercise float64
	)

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a journal entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.TrimSpace(strings.Join(args, " "))
			if content == "" {
				return errors.New("content is required")
			}
			entry := journal.NewEntry(content, time.Now())
			if mood != "" {
				m, ok := journal.ParseMood(mood)
				if !ok {
					return fmt.Errorf("invalid mood %q", mood)
				}
				entry.Mood = string(m)
			}
			if cmd.Flags().Changed("sleep") {
				if sleep < 0 || sleep > 24 {
					return errors.New("--sleep must be between 0 and 24")
				}
				entry.SleepHours = &sleep
			}
			if cmd.Flags().Changed("exercise") {
				if exercise < 0 || exercise > 1440 {
					return errors.New("--exercise must be between 0 and 1440")
				}
				entry.ExerciseMinutes = &exercise
			}

			docs, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()
			if err := docs.AddEntry(cmd.Context(), entry); err != nil {
				return err
			}

			return emit(cmd.OutOrStdout(), entry, func(w io.Writer) {
				fmt.Fprintf(w, "Added entry: %s\n", shortID(entry.ID))
				fmt.Fprintf(w, "Content: %s\n", truncate(entry.Content, 80))
			})
		},
	}

	cmd.Flags().StringVar(&mood, "mood", "", "self-reported mood, e.g. positive or negative")
	cmd.Flags().Float64Var(&sleep, "sleep", 0, "hours slept")
	cmd.Flags().Float64Var(&exercise, "exercise", 0, "minutes exercised")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		limit int
		query string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			all, err := docs.Entries(cmd.Context())
			if err != nil {
				return err
			}
			entries := make([]journal.Entry, 0, len(all))
			for _, e := range all {
				if e.Deleted() {
					continue
				}
				if query != "" && !strings.Contains(strings.ToLower(e.Content), strings.ToLower(query)) {
					continue
				}
				entries = append(entries, e)
				if limit > 0 && len(entries) == limit {
					break
				}
			}

			return emit(cmd.OutOrStdout(), entries, func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, "No entries yet. Use 'journalctl add' to create one.")
					return
				}
				for _, e := range entries {
					fmt.Fprintf(w, "%s  %s  %s\n", shortID(e.ID), e.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(e.Content, 60))
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().StringVarP(&query, "query", "q", "", "only show entries containing this text")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an entry by id or id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			entry, err := findEntry(cmd.Context(), docs, args[0])
			if err != nil {
				return err
			}
			if err := docs.SoftDeleteEntry(cmd.Context(), entry.ID, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry: %s\n", shortID(entry.ID))
			return nil
		},
	}
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [content]",
		Short: "Show the metrics read from a piece of text without saving it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := journal.Extract(strings.Join(args, " "))
			scored := journal.Score(raw)
			out := struct {
				Metrics journal.RawMetrics    `json:"metrics" yaml:"metrics"`
				Scores  journal.ScoredMetrics `json:"scores" yaml:"scores"`
			}{raw, scored}

			return emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "Sleep: %s (score %d, %s)\n", optional(raw.SleepHours, "hours"), scored.SleepScore, scored.SleepQuality)
				fmt.Fprintf(w, "Exercise: %s (score %d)\n", optional(raw.ExerciseMinutes, "minutes"), scored.ExerciseScore)
				fmt.Fprintf(w, "Mood: %s, stress: %s, energy: %s\n", raw.Mood, raw.Stress, raw.Energy)
				fmt.Fprintf(w, "Mental health: %d (%s)\n", scored.MentalHealthScore, scored.MentalHealthLabel)
				if len(raw.Symptoms) > 0 {
					fmt.Fprintf(w, "Symptoms: %s\n", strings.Join(raw.Symptoms, ", "))
				}
			})
		},
	}
}

func analyzeCmd() *cobra.Command {
	var (
		limit   int
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze recent entries and store the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			entries, err := docs.Entries(cmd.Context())
			if err != nil {
				return err
			}
			batch := journal.Latest(entries, limit)
			if len(batch) == 0 {
				return errors.New("no entries to analyze; use 'journalctl add' first")
			}

			cfg := config.Load()
			lg := newLogger()
			defer lg.Sync()
			var client ai.Client
			if openai := ai.NewOpenAIClient(cfg); !offline && openai.Configured() {
				client = openai
			}
			orchestrator := analysis.NewOrchestrator(client, nil, nil, lg, analysis.Options{
				Model:   cfg.OpenAIModel,
				Timeout: time.Duration(cfg.AITimeoutSeconds*(cfg.AIMaxRetries+1)) * time.Second,
			})
			rec := orchestrator.Analyze(cmd.Context(), docs, batch)

			return emit(cmd.OutOrStdout(), rec, func(w io.Writer) { printRecord(w, rec) })
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 7, "number of recent entries to analyze")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the model and use the local summary")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			history, err := analysis.LoadHistory(cmd.Context(), docs)
			if err != nil {
				return err
			}
			if limit > 0 && len(history) > limit {
				history = history[:limit]
			}

			return emit(cmd.OutOrStdout(), history, func(w io.Writer) {
				if len(history) == 0 {
					fmt.Fprintln(w, "No analyses yet. Use 'journalctl analyze' to create one.")
					return
				}
				for _, rec := range history {
					m := rec.Metrics
					fmt.Fprintf(w, "%s  %-8s  sleep %.1fh  exercise %.0fmin  mental %.0f  (%d entries)\n",
						rec.Timestamp.Local().Format("2006-01-02 15:04"), rec.Source,
						m.Sleep.Average, m.Exercise.Average, m.MentalHealth.AverageScore, rec.EntryCount)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of analyses to show")
	return cmd
}

func trendCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "trend [sleep|exercise|mental]",
		Short: "Summarize one metric across stored analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			history, err := analysis.LoadHistory(cmd.Context(), docs)
			if err != nil {
				return err
			}
			view, err := report.Trend(history, args[0], window)
			if err != nil {
				return err
			}

			return emit(cmd.OutOrStdout(), view, func(w io.Writer) {
				fmt.Fprintf(w, "%s over %d analyses\n", view.Metric, len(view.Points))
				fmt.Fprintf(w, "Average: %.1f\n", view.Result.Average)
				fmt.Fprintf(w, "Consistency: %d%%\n", view.Result.ConsistencyScore)
				fmt.Fprintf(w, "Direction: %s\n", view.Result.Direction.Label())
			})
		},
	}

	cmd.Flags().IntVarP(&window, "window", "w", 7, "number of recent analyses to include")
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		period string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a health report for the last week, month or year",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := report.ParsePeriod(strings.ToLower(strings.TrimSpace(period)))
			if !ok {
				return errors.New("period must be one of week, month, year")
			}

			docs, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			history, err := analysis.LoadHistory(ctx, docs)
			if err != nil {
				return err
			}
			goals, err := docs.Goals(ctx)
			if err != nil {
				return err
			}
			nutrition, err := docs.Nutrition(ctx)
			if err != nil {
				return err
			}

			now := time.Now()
			r := report.Build(report.Input{
				History:  history,
				Goals:    goals.Goals,
				Habits:   goals.Habits,
				Meals:    nutrition.Meals,
				Range:    report.RangeForPeriod(p, now),
				Now:      now,
				Location: time.Local,
			})

			if out != "" {
				if out == "auto" {
					out = report.Filename(p, now)
				}
				if err := os.WriteFile(out, []byte(report.RenderText(r, p)), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
				return nil
			}
			return emit(cmd.OutOrStdout(), r, func(w io.Writer) {
				fmt.Fprint(w, report.RenderText(r, p))
			})
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "week", "report period: week, month or year")
	cmd.Flags().StringVar(&out, "out", "", "write the text report to this file ('auto' picks a dated name)")
	return cmd
}

func findEntry(ctx context.Context, docs *store.UserStore, prefix string) (journal.Entry, error) {
	entries, err := docs.Entries(ctx)
	if err != nil {
		return journal.Entry{}, err
	}
	var found []journal.Entry
	for _, e := range journal.Live(entries) {
		if strings.HasPrefix(e.ID, prefix) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return journal.Entry{}, fmt.Errorf("no entry matches %q", prefix)
	case 1:
		return found[0], nil
	default:
		return journal.Entry{}, fmt.Errorf("%q matches %d entries; use a longer prefix", prefix, len(found))
	}
}

func printRecord(w io.Writer, rec analysis.Record) {
	m := rec.Metrics
	fmt.Fprintf(w, "Analysis of %d entries (%s)\n\n", rec.EntryCount, rec.Source)
	fmt.Fprintf(w, "Sleep: %.1f hours, quality %.0f, %s\n", m.Sleep.Average, m.Sleep.Quality, m.Sleep.Trend)
	fmt.Fprintf(w, "Exercise: %.0f minutes, %s\n", m.Exercise.Average, m.Exercise.Trend)
	fmt.Fprintf(w, "Mental health: %.0f, mostly %s, stress %s, %s\n",
		m.MentalHealth.AverageScore, m.MentalHealth.PredominantMood, m.MentalHealth.StressLevel, m.MentalHealth.Trend)
	fmt.Fprintln(w, "\nInsights:")
	for _, s := range rec.Insights {
		fmt.Fprintf(w, "- %s\n", s)
	}
	fmt.Fprintln(w, "\nRecommendations:")
	for _, s := range rec.Recommendations {
		fmt.Fprintf(w, "- %s\n", s)
	}
}

func optional(v *float64, unit string) string {
	if v == nil {
		return "not mentioned"
	}
	return fmt.Sprintf("%g %s", *v, unit)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

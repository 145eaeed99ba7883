package report

import (
	"fmt"
	"strings"
)

// RenderText produces the plain text download: labeled sections, one metric
// per line.
func RenderText(r Report, period Period) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Health Report (%s)\n", period)
	fmt.Fprintf(&b, "Generated on: %s\n", r.GeneratedAt.Format(dateLayout))
	fmt.Fprintf(&b, "Period: %s to %s\n\n", r.DateRange.Start, r.DateRange.End)

	b.WriteString("Overview:\n")
	fmt.Fprintf(&b, "- Total Journal Entries: %d\n", r.Overview.TotalEntries)
	fmt.Fprintf(&b, "- Completed Goals: %d\n", r.Overview.CompletedGoals)
	fmt.Fprintf(&b, "- Active Habits: %d\n", r.Overview.ActiveHabits)
	fmt.Fprintf(&b, "- Average Daily Calories: %d\n\n", r.Overview.AvgCalories)

	fmt.Fprintf(&b, "Health Score: %d%%\n\n", r.HealthScore)

	b.WriteString("Sleep Analysis:\n")
	fmt.Fprintf(&b, "- Average Sleep: %.1f hours\n", r.Sleep.Average)
	fmt.Fprintf(&b, "- Sleep Consistency: %d%%\n", r.Sleep.Consistency)
	fmt.Fprintf(&b, "- Sleep Quality: %d%%\n", r.Sleep.QualityScore)
	writeInsights(&b, r.Sleep.Insights)
	b.WriteString("\n")

	b.WriteString("Exercise Analysis:\n")
	fmt.Fprintf(&b, "- Average Exercise: %d minutes\n", r.Exercise.Average)
	fmt.Fprintf(&b, "- Exercise Consistency: %d%%\n", r.Exercise.Consistency)
	fmt.Fprintf(&b, "- Activity Score: %d%%\n", r.Exercise.ActivityScore)
	writeInsights(&b, r.Exercise.Insights)
	return b.String()
}

func writeInsights(b *strings.Builder, insights []string) {
	b.WriteString("Insights:\n")
	for _, line := range insights {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

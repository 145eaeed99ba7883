package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"healthjournal/internal/journal"
	"healthjournal/internal/trend"
)

var (
	ErrMalformedResponse = errors.New("analysis: model reply is not a JSON object")
	ErrMissingField      = errors.New("analysis: model reply is missing a required field")
)

// number accepts JSON numbers and numeric strings.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

type replySleep struct {
	Average *number `json:"average"`
	Quality *number `json:"quality"`
	Trend   string  `json:"trend"`
}

type replyMental struct {
	AverageScore    *number `json:"averageScore"`
	PredominantMood string  `json:"predominantMood"`
	StressLevel     string  `json:"stressLevel"`
	Trend           string  `json:"trend"`
}

type replyExercise struct {
	Average *number `json:"average"`
	Trend   string  `json:"trend"`
}

// Reply is a model answer that passed shape validation.
type Reply struct {
	Metrics struct {
		Sleep        *replySleep    `json:"sleep"`
		MentalHealth *replyMental   `json:"mentalHealth"`
		Exercise     *replyExercise `json:"exercise"`
	} `json:"metrics"`
	Insights        *[]string `json:"insights"`
	Recommendations *[]string `json:"recommendations"`
}

// ParseReply pulls the JSON object out of a model answer, tolerating code
// fences and stray prose around it, and checks the required fields.
func ParseReply(answer string) (Reply, error) {
	candidate := extractObject(answer)
	if candidate == "" {
		return Reply{}, ErrMalformedResponse
	}
	var reply Reply
	if err := json.Unmarshal([]byte(candidate), &reply); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	switch {
	case reply.Metrics.Sleep == nil:
		return Reply{}, fmt.Errorf("%w: metrics.sleep", ErrMissingField)
	case reply.Insights == nil:
		return Reply{}, fmt.Errorf("%w: insights", ErrMissingField)
	case reply.Recommendations == nil:
		return Reply{}, fmt.Errorf("%w: recommendations", ErrMissingField)
	}
	return reply, nil
}

func extractObject(answer string) string {
	candidate := strings.TrimSpace(answer)
	if strings.HasPrefix(candidate, "```") {
		candidate = strings.TrimSpace(strings.TrimPrefix(candidate, "```json"))
		candidate = strings.TrimSpace(strings.TrimPrefix(candidate, "```"))
		candidate = strings.TrimSpace(strings.TrimSuffix(candidate, "```"))
	}
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return ""
	}
	return candidate[start : end+1]
}

// Merge turns a validated reply into a record. Values the model got wrong or
// left out are taken from the local summary.
func Merge(reply Reply, local Summary) Record {
	base := local.Record()
	rec := Record{Metrics: base.Metrics, Source: SourceLLM}

	if s := reply.Metrics.Sleep; s != nil {
		if s.Average != nil {
			rec.Metrics.Sleep.Average = clamp1(float64(*s.Average), 0, 24)
			rec.Metrics.Sleep.Quality = float64(journal.SleepScore(rec.Metrics.Sleep.Average))
		}
		if s.Quality != nil {
			rec.Metrics.Sleep.Quality = clamp1(float64(*s.Quality), 0, 100)
		}
		rec.Metrics.Sleep.Trend = pickTrend(s.Trend, base.Metrics.Sleep.Trend)
	}
	if m := reply.Metrics.MentalHealth; m != nil {
		if m.AverageScore != nil {
			rec.Metrics.MentalHealth.AverageScore = clamp1(float64(*m.AverageScore), 0, 100)
		}
		if mood, ok := journal.ParseMood(m.PredominantMood); ok {
			rec.Metrics.MentalHealth.PredominantMood = string(mood)
		}
		if stress, ok := journal.ParseStress(m.StressLevel); ok {
			rec.Metrics.MentalHealth.StressLevel = string(stress)
		}
		rec.Metrics.MentalHealth.Trend = pickTrend(m.Trend, base.Metrics.MentalHealth.Trend)
	}
	if e := reply.Metrics.Exercise; e != nil {
		if e.Average != nil {
			rec.Metrics.Exercise.Average = clamp1(float64(*e.Average), 0, 24*60)
		}
		rec.Metrics.Exercise.Trend = pickTrend(e.Trend, base.Metrics.Exercise.Trend)
	}

	rec.Insights = mergeLines(*reply.Insights, base.Insights, 3)
	rec.Recommendations = mergeLines(*reply.Recommendations, base.Recommendations, 3)
	return rec
}

func pickTrend(raw, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if trend.Valid(normalized) {
		return normalized
	}
	return fallback
}

// mergeLines keeps the model's lines first, drops blanks and case-insensitive
// duplicates, then pads from the local lines up to limit.
func mergeLines(primary, fallback []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit*2)
	add := func(lines []string) {
		for _, line := range lines {
			if len(out) == limit {
				return
			}
			trimmed := strings.TrimSpace(line)
			key := strings.ToLower(strings.TrimRight(trimmed, ".!"))
			if trimmed == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, trimmed)
		}
	}
	add(primary)
	add(fallback)
	return out
}

func clamp1(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return journal.Round1(math.Max(lo, math.Min(hi, v)))
}

package mastery

import (
	"fmt"
	"sort"
	"time"

	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// InsightType categorizes a generated insight.
type InsightType string

const (
	InsightTrend     InsightType = "trend"
	InsightAlert     InsightType = "alert"
	InsightMilestone InsightType = "milestone"
)

// InsightPriority orders insights for display.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
	PriorityLow    InsightPriority = "low"
)

// Insight is a deterministic, template-rendered observation about the
// learner's recent performance. Insights are derived on read, not persisted.
type Insight struct {
	Type     InsightType     `json:"type"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Priority InsightPriority `json:"priority"`
}

// Insight generation thresholds.
const (
	accuracyDropAlertPct    = 10
	accuracyDropWindowDays  = 7
	milestoneMasteryScore   = 80
	strongDomainScore       = 75
	strugglingDomainScore   = 60
	weeklyAccuracyMinEvents = 5
)

// BuildInsights renders the insight set for a learner from their domain
// standings and recent cross-domain events. Events must be ordered oldest
// first. Output ordering is deterministic: alerts, then milestones, then
// trends, each sorted by domain name.
func BuildInsights(standings []DomainStanding, events []domain.ReviewEvent, now time.Time) []Insight {
	var alerts, milestones, trends []Insight

	if drop, ok := weeklyAccuracyChange(events, now); ok && drop < -accuracyDropAlertPct {
		alerts = append(alerts, Insight{
			Type:     InsightAlert,
			Title:    "Accuracy Drop Alert",
			Message:  fmt.Sprintf("Your accuracy has dropped by %.1f%% over the past week. Consider taking a break or reviewing fundamental concepts.", -drop),
			Priority: PriorityHigh,
		})
	} else if ok && drop > accuracyDropAlertPct {
		trends = append(trends, Insight{
			Type:     InsightTrend,
			Title:    "Accuracy Improving",
			Message:  fmt.Sprintf("Great progress! Your accuracy has improved by %.1f%% over the past week.", drop),
			Priority: PriorityMedium,
		})
	}

	sorted := make([]DomainStanding, 0, len(standings))
	for _, s := range standings {
		if s.Domain != nil && s.Mastery != nil {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Domain.Name < sorted[j].Domain.Name
	})

	for _, s := range sorted {
		m := s.Mastery
		name := s.Domain.Name

		switch {
		case m.Score >= milestoneMasteryScore && m.Trend == domain.TrendImproving:
			milestones = append(milestones, Insight{
				Type:     InsightMilestone,
				Title:    fmt.Sprintf("%s Mastery Achieved", name),
				Message:  fmt.Sprintf("Congratulations! You've reached %.0f%% mastery in %s. You're well-prepared in this domain.", m.Score, name),
				Priority: PriorityMedium,
			})

		case m.Score > strongDomainScore && m.Trend == domain.TrendImproving:
			trends = append(trends, Insight{
				Type:     InsightTrend,
				Title:    fmt.Sprintf("%s Trending Up", name),
				Message:  fmt.Sprintf("Excellent work! Your %s mastery is now at %.0f%% and improving.", name, m.Score),
				Priority: PriorityLow,
			})

		case m.Score < strugglingDomainScore && m.Trend == domain.TrendDeclining:
			alerts = append(alerts, Insight{
				Type:     InsightAlert,
				Title:    fmt.Sprintf("%s Needs Attention", name),
				Message:  fmt.Sprintf("Your %s mastery has declined to %.0f%%. Consider dedicating more practice time to this area.", name, m.Score),
				Priority: PriorityHigh,
			})
		}
	}

	out := make([]Insight, 0, len(alerts)+len(milestones)+len(trends))
	out = append(out, alerts...)
	out = append(out, milestones...)
	out = append(out, trends...)
	return out
}

// weeklyAccuracyChange compares plain accuracy over the most recent week
// against the week before it. Returns ok=false when either week has too few
// events to be meaningful.
func weeklyAccuracyChange(events []domain.ReviewEvent, now time.Time) (float64, bool) {
	weekAgo := now.AddDate(0, 0, -accuracyDropWindowDays)
	twoWeeksAgo := now.AddDate(0, 0, -2*accuracyDropWindowDays)

	var recentTotal, recentCorrect, olderTotal, olderCorrect int
	for _, e := range events {
		switch {
		case e.RecordedAt.After(weekAgo):
			recentTotal++
			if e.Correct {
				recentCorrect++
			}
		case e.RecordedAt.After(twoWeeksAgo):
			olderTotal++
			if e.Correct {
				olderCorrect++
			}
		}
	}

	if recentTotal < weeklyAccuracyMinEvents || olderTotal < weeklyAccuracyMinEvents {
		return 0, false
	}

	recent := float64(recentCorrect) / float64(recentTotal) * 100
	older := float64(olderCorrect) / float64(olderTotal) * 100
	return recent - older, true
}

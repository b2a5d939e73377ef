package mastery

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-api/internal/domain"
)

// GapSeverity classifies how far below target a domain sits.
type GapSeverity string

const (
	SeverityCritical GapSeverity = "critical"
	SeverityModerate GapSeverity = "moderate"
	SeverityMinor    GapSeverity = "minor"
)

// GapType distinguishes domains the learner never engaged with from domains
// where earlier mastery has eroded.
type GapType string

const (
	GapNeverLearned GapType = "never_learned"
	GapForgotten    GapType = "forgotten"
)

// Severity boundaries and the exposure cutoff for never_learned.
const (
	criticalBelowScore = 40
	moderateBelowScore = 60

	neverLearnedMaxQuestions = 10
)

// KnowledgeGap is a derived, non-persisted finding: a domain whose mastery
// sits below its target, with a ranked remediation priority.
type KnowledgeGap struct {
	DomainID        uuid.UUID   `json:"domain_id"`
	DomainName      string      `json:"domain_name"`
	CurrentMastery  float64     `json:"current_mastery"`
	TargetThreshold float64     `json:"target_threshold"`
	Severity        GapSeverity `json:"severity"`
	GapType         GapType     `json:"gap_type"`
	QuestionCount   int         `json:"question_count"`
	PriorityScore   float64     `json:"priority_score"`
	Recommendation  string      `json:"recommendation"`
}

// DomainStanding pairs an exam domain with the learner's mastery snapshot
// for it. Mastery may be nil when the learner has no history in the domain.
type DomainStanding struct {
	Domain  *domain.ExamDomain
	Mastery *domain.DomainMastery
}

// DetectGaps compares each domain's mastery against its target threshold and
// returns the domains that fall short, ordered by descending priority with
// ties broken by domain name.
func DetectGaps(standings []DomainStanding) []KnowledgeGap {
	gaps := make([]KnowledgeGap, 0, len(standings))

	for _, s := range standings {
		if s.Domain == nil {
			continue
		}

		var score float64
		var questions int
		if s.Mastery != nil {
			score = s.Mastery.Score
			questions = s.Mastery.QuestionCount
		}

		threshold := s.Domain.Target()
		if score >= threshold {
			continue
		}

		severity := gapSeverity(score)
		gapType := gapType(questions)

		gaps = append(gaps, KnowledgeGap{
			DomainID:        s.Domain.ID,
			DomainName:      s.Domain.Name,
			CurrentMastery:  score,
			TargetThreshold: threshold,
			Severity:        severity,
			GapType:         gapType,
			QuestionCount:   questions,
			PriorityScore:   priorityScore(score, threshold, s.Domain.ExamWeight),
			Recommendation:  recommendation(gapType, severity, s.Domain.Name),
		})
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].PriorityScore != gaps[j].PriorityScore {
			return gaps[i].PriorityScore > gaps[j].PriorityScore
		}
		return gaps[i].DomainName < gaps[j].DomainName
	})

	return gaps
}

func gapSeverity(score float64) GapSeverity {
	switch {
	case score < criticalBelowScore:
		return SeverityCritical
	case score < moderateBelowScore:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

func gapType(questionCount int) GapType {
	if questionCount < neverLearnedMaxQuestions {
		return GapNeverLearned
	}
	return GapForgotten
}

// priorityScore combines gap size with the domain's share of the exam
// blueprint. examWeight is on a 0-100 scale.
func priorityScore(score, threshold, examWeight float64) float64 {
	gap := threshold - score
	if gap < 0 {
		gap = 0
	}
	return gap * examWeight / 100
}

// recommendation renders the deterministic remediation template for a gap.
func recommendation(gapType GapType, severity GapSeverity, domainName string) string {
	if gapType == GapNeverLearned {
		if severity == SeverityCritical {
			return fmt.Sprintf("Start with foundational %s concepts. Focus on understanding core principles before practicing questions.", domainName)
		}
		return fmt.Sprintf("Begin exploring %s topics. Review flashcards and attempt practice questions to build familiarity.", domainName)
	}

	switch severity {
	case SeverityCritical:
		return fmt.Sprintf("Urgent review needed for %s. Your mastery has declined significantly. Schedule focused practice sessions.", domainName)
	case SeverityModerate:
		return fmt.Sprintf("Refresh your %s knowledge. Regular practice will help restore your previous mastery level.", domainName)
	default:
		return fmt.Sprintf("Maintain your %s skills with periodic review to prevent further decline.", domainName)
	}
}

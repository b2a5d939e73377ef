package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Exam-domain-specific validation errors
var (
	// ErrDomainIDEmpty is returned when a domain ID is empty or nil.
	ErrDomainIDEmpty = errors.New("domain ID cannot be empty")

	// ErrDomainNameEmpty is returned when a domain name is empty.
	ErrDomainNameEmpty = errors.New("domain name cannot be empty")

	// ErrInvalidExamWeight is returned when an exam weight is outside [0, 100].
	ErrInvalidExamWeight = errors.New("exam weight must be between 0 and 100")

	// ErrInvalidMasteryTarget is returned when a mastery target is outside (0, 100].
	ErrInvalidMasteryTarget = errors.New("mastery target must be between 0 and 100")
)

// DefaultMasteryTarget is the passing bar applied to domains that do not
// configure their own target threshold.
const DefaultMasteryTarget = 70.0

// ExamDomain is one knowledge area of the exam blueprint. ExamWeight is the
// domain's share of the exam (0-100); MasteryTarget is the per-domain passing
// bar used by gap detection (zero means use DefaultMasteryTarget).
type ExamDomain struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ExamWeight    float64   `json:"exam_weight"`
	MasteryTarget float64   `json:"mastery_target"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Target returns the effective mastery threshold for the domain.
func (d *ExamDomain) Target() float64 {
	if d.MasteryTarget > 0 {
		return d.MasteryTarget
	}
	return DefaultMasteryTarget
}

// Validate checks if the ExamDomain has valid data.
func (d *ExamDomain) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDomainIDEmpty
	}

	if d.Name == "" {
		return ErrDomainNameEmpty
	}

	if d.ExamWeight < 0 || d.ExamWeight > 100 {
		return ErrInvalidExamWeight
	}

	if d.MasteryTarget < 0 || d.MasteryTarget > 100 {
		return ErrInvalidMasteryTarget
	}

	return nil
}

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-exam-client/internal/model"
)

// ExamSource lists the exams of an enrollment. A non-nil error alongside
// exams means the listing is partial.
type ExamSource interface {
	ListByAssignment(ctx context.Context, assignmentID int) ([]model.Exam, error)
}

// AttemptHistory lists a student's attempts for an exam.
type AttemptHistory interface {
	ListByStudent(ctx context.Context, examID, studentID int) ([]model.Attempt, error)
}

// Identity is the authenticated student.
type Identity interface {
	StudentID() int
}

// CatalogEntry is one exam with the student's history and gate decision.
type CatalogEntry struct {
	Exam         model.Exam
	Attempts     []model.Attempt
	AttemptsUsed int
	Gate         Decision
}

// Catalog partitions exams for tab display. Degraded is set when some
// listing failed and the catalog may be incomplete.
type Catalog struct {
	Pending   []CatalogEntry
	Completed []CatalogEntry
	Degraded  bool
}

// CatalogOption configures a CatalogService.
type CatalogOption func(*CatalogService)

// WithCatalogClock overrides the clock used for gate decisions.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.now = now }
}

// CatalogService loads the exam catalog of one enrollment.
type CatalogService struct {
	exams      ExamSource
	attempts   AttemptHistory
	identity   Identity
	enrollment model.Enrollment
	now        func() time.Time
	log        zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	exams ExamSource,
	attempts AttemptHistory,
	identity Identity,
	enrollment model.Enrollment,
	log zerolog.Logger,
	opts ...CatalogOption,
) *CatalogService {
	s := &CatalogService{
		exams:      exams,
		attempts:   attempts,
		identity:   identity,
		enrollment: enrollment,
		now:        time.Now,
		log:        log.With().Str("component", "catalog_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the catalog. It never fails: errors are logged and leave
// the affected exams out.
func (s *CatalogService) Load(ctx context.Context) Catalog {
	cat := Catalog{Pending: []CatalogEntry{}, Completed: []CatalogEntry{}}

	exams, err := s.exams.ListByAssignment(ctx, s.enrollment.AssignmentID)
	if err != nil {
		s.log.Warn().Err(err).
			Int("assignment_id", s.enrollment.AssignmentID).
			Int("usable", len(exams)).
			Msg("Failed to list exams")
		cat.Degraded = true
		if len(exams) == 0 {
			return cat
		}
	}

	studentID := s.identity.StudentID()
	now := s.now()
	for _, exam := range exams {
		attempts, err := s.attempts.ListByStudent(ctx, exam.ID, studentID)
		if err != nil {
			s.log.Warn().Err(err).Int("exam_id", exam.ID).Msg("Failed to list attempts, skipping exam")
			cat.Degraded = true
			continue
		}

		used := AttemptsUsed(attempts)
		entry := CatalogEntry{
			Exam:         exam,
			Attempts:     attempts,
			AttemptsUsed: used,
			Gate:         CanStart(exam, now, used),
		}
		if used > 0 {
			cat.Completed = append(cat.Completed, entry)
		} else {
			cat.Pending = append(cat.Pending, entry)
		}
	}

	s.log.Debug().
		Int("pending", len(cat.Pending)).
		Int("completed", len(cat.Completed)).
		Msg("Catalog loaded")
	return cat
}

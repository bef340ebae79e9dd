package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/permit-log/backend/internal/auth"
	"github.com/pkordes/permit-log/backend/internal/domain"
	"github.com/pkordes/permit-log/backend/internal/repo"
)

// ReportService assembles the certification report data handed to the
// external renderer: the student header, countable trip rows in
// chronological order, and the hour totals.
type ReportService struct {
	trips    repo.TripRepo
	parents  repo.ParentRepo
	students repo.StudentRepo
	rels     repo.RelationshipRepo
	log      *slog.Logger
}

// NewReportService constructs a ReportService backed by the provided repos.
func NewReportService(trips repo.TripRepo, parents repo.ParentRepo, students repo.StudentRepo, rels repo.RelationshipRepo, log *slog.Logger) *ReportService {
	if log == nil {
		log = slog.Default()
	}
	return &ReportService{trips: trips, parents: parents, students: students, rels: rels, log: log}
}

// BuildReport authorizes the caller, loads the student's trips, and shapes
// the countable ones into a domain.Report. Rendering (PDF, print layout) is
// the consumer's concern.
func (s *ReportService) BuildReport(ctx context.Context, identity auth.Identity, studentID uuid.UUID, now time.Time) (domain.Report, error) {
	if err := s.authorize(ctx, identity, studentID); err != nil {
		return domain.Report{}, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.ReportService.BuildReport: %w", err)
	}

	trips, err := s.trips.ListByStudent(ctx, studentID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.ReportService.BuildReport: %w", err)
	}

	return domain.BuildReport(student, trips, s.approverNames(ctx, trips), now), nil
}

// approverNames resolves the display name of each distinct supervising
// parent in the trip set. A failed lookup leaves that name blank rather than
// failing the report.
func (s *ReportService) approverNames(ctx context.Context, trips []domain.Trip) map[string]string {
	names := make(map[string]string)
	for _, t := range trips {
		key := t.ParentID.String()
		if _, seen := names[key]; seen {
			continue
		}
		parent, err := s.parents.GetByID(ctx, t.ParentID)
		if err != nil {
			s.log.WarnContext(ctx, "report approver lookup failed", "parent_id", key, "error", err)
			names[key] = ""
			continue
		}
		names[key] = parent.DisplayName()
	}
	return names
}

func (s *ReportService) authorize(ctx context.Context, identity auth.Identity, studentID uuid.UUID) error {
	if identity.Role != auth.RoleParent {
		return domain.Errorf(domain.ErrPermission, "only parents can generate reports")
	}

	parent, err := s.parents.GetByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Errorf(domain.ErrPermission, "no parent profile for this account")
		}
		return fmt.Errorf("service.ReportService.authorize: %w", err)
	}

	ok, err := s.rels.Exists(ctx, parent.ID, studentID)
	if err != nil {
		return fmt.Errorf("service.ReportService.authorize: %w", err)
	}
	if !ok {
		return domain.Errorf(domain.ErrPermission, "not authorized for this student")
	}
	return nil
}

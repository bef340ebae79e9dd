// Package handler implements the HTTP handlers for the Permit Log API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, report.go) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/permit-log/backend/internal/auth"
	"github.com/pkordes/permit-log/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Start(ctx context.Context, identity auth.Identity, studentID uuid.UUID, now time.Time) (domain.Trip, error)
	LogManual(ctx context.Context, identity auth.Identity, studentID uuid.UUID, start, end time.Time, gps json.RawMessage, now time.Time) (domain.Trip, error)
	Stop(ctx context.Context, identity auth.Identity, tripID uuid.UUID, gps json.RawMessage, now time.Time) (domain.Trip, error)
	CancelActive(ctx context.Context, identity auth.Identity, tripID uuid.UUID) error
	Edit(ctx context.Context, identity auth.Identity, tripID uuid.UUID, newStart, newEnd time.Time) (domain.Trip, error)
	Approve(ctx context.Context, identity auth.Identity, tripID uuid.UUID) (domain.Trip, bool, error)
	Delete(ctx context.Context, identity auth.Identity, tripID uuid.UUID) error
	GetByID(ctx context.Context, identity auth.Identity, tripID uuid.UUID) (domain.Trip, error)
	ListByStudent(ctx context.Context, identity auth.Identity, studentID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Hours(ctx context.Context, identity auth.Identity, studentID uuid.UUID) (domain.Summary, error)
	Audits(ctx context.Context, identity auth.Identity, tripID uuid.UUID) ([]domain.TripAudit, error)
}

// ReportServicer defines the report operation the report handler depends on.
type ReportServicer interface {
	BuildReport(ctx context.Context, identity auth.Identity, studentID uuid.UUID, now time.Time) (domain.Report, error)
}

// Server implements all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	trips   TripServicer
	reports ReportServicer
	now     func() time.Time
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, reports ReportServicer) *Server {
	return &Server{trips: trips, reports: reports, now: time.Now}
}

// Routes mounts every versioned endpoint behind the given auth middleware.
// The health endpoint is registered separately (and unauthenticated) in main.
func (s *Server) Routes(authMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authMW)

	r.Route("/students/{studentID}", func(r chi.Router) {
		r.Post("/trips", s.logManualTrip)
		r.Post("/trips/start", s.startTrip)
		r.Get("/trips", s.listTrips)
		r.Get("/hours", s.getHours)
		r.Get("/report", s.getReport)
	})

	r.Route("/trips/{tripID}", func(r chi.Router) {
		r.Get("/", s.getTrip)
		r.Put("/", s.editTrip)
		r.Delete("/", s.deleteTrip)
		r.Post("/stop", s.stopTrip)
		r.Post("/cancel", s.cancelTrip)
		r.Post("/approve", s.approveTrip)
		r.Get("/audits", s.listAudits)
	})

	return r
}

// identity pulls the authenticated caller out of the request context.
// The auth middleware guarantees it is present on every routed request.
func identity(r *http.Request) (auth.Identity, bool) {
	return auth.FromContext(r.Context())
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

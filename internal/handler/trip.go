package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/permit-log/backend/internal/auth"
	"github.com/pkordes/permit-log/backend/internal/domain"
)

// tripResponse decorates a trip with the countable label so the raw list
// view can show which rows feed the official totals and which are excluded.
type tripResponse struct {
	domain.Trip
	Countable bool `json:"countable"`
}

func toTripResponse(t domain.Trip) tripResponse {
	return tripResponse{Trip: t, Countable: t.Countable()}
}

// logTripRequest is the body for POST /students/{studentID}/trips.
type logTripRequest struct {
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	GPSData   json.RawMessage `json:"gps_data,omitempty"`
}

// editTripRequest is the body for PUT /trips/{tripID}.
type editTripRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// stopTripRequest is the optional body for POST /trips/{tripID}/stop.
type stopTripRequest struct {
	GPSData json.RawMessage `json:"gps_data,omitempty"`
}

// logManualTrip handles POST /students/{studentID}/trips.
func (s *Server) logManualTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, domain.ErrPermission)
		return
	}
	studentID, err := pathUUID(r, "studentID")
	if err != nil {
		writeBadRequest(w, "invalid student id")
		return
	}

	var req logTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		writeBadRequest(w, "start_time and end_time are required")
		return
	}

	trip, err := s.trips.LogManual(r.Context(), id, studentID, req.StartTime, req.EndTime, req.GPSData, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripResponse(trip))
}

// startTrip handles POST /students/{studentID}/trips/start.
func (s *Server) startTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, domain.ErrPermission)
		return
	}
	studentID, err := pathUUID(r, "studentID")
	if err != nil {
		writeBadRequest(w, "invalid student id")
		return
	}

	trip, err := s.trips.Start(r.Context(), id, studentID, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripResponse(trip))
}

// listTrips handles GET /students/{studentID}/trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, domain.ErrPermission)
		return
	}
	studentID, err := pathUUID(r, "studentID")
	if err != nil {
		writeBadRequest(w, "invalid student id")
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	trips, total, err := s.trips.ListByStudent(r.Context(), id, studentID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]tripResponse, len(trips))
	for i, t := range trips {
		data[i] = toTripResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"pagination": map[string]any{
			"page":  params.Page,
			"limit": params.Limit,
			"total": total,
		},
	})
}

// getHours handles GET /students/{studentID}/hours.
func (s *Server) getHours(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, domain.ErrPermission)
		return
	}
	studentID, err := pathUUID(r, "studentID")
	if err != nil {
		writeBadRequest(w, "invalid student id")
		return
	}

	summary, err := s.trips.Hours(r.Context(), id, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_minutes": summary.TotalMinutes,
		"night_minutes": summary.NightMinutes,
		"day_minutes":   summary.DayMinutes,
		"count":         summary.Count,
		"total_hours":   summary.TotalHours(),
		"night_hours":   summary.NightHours(),
		"day_hours":     summary.DayHours(),
	})
}

// getTrip handles GET /trips/{tripID}.
func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, tripID, ok := s.tripRequest(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id, tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripResponse(trip))
}

// editTrip handles PUT /trips/{tripID}.
func (s *Server) editTrip(w http.ResponseWriter, r *http.Request) {
	id, tripID, ok := s.tripRequest(w, r)
	if !ok {
		return
	}

	var req editTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		writeBadRequest(w, "start_time and end_time are required")
		return
	}

	trip, err := s.trips.Edit(r.Context(), id, tripID, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripResponse(trip))
}

// stopTrip handles POST /trips/{tripID}/stop.
// The body is optional; an empty body just means no GPS payload.
func (s *Server) stopTrip(w http.ResponseWriter, r *http.Request) {
	id, tripID, ok := s.tripRequest(w, r)
	if !ok {
		return
	}

	var req stopTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid request body")
		return
	}

	trip, err := s.trips.Stop(r.Context(), id, tripID, req.GPSData, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripResponse(trip))
}

// cancelTrip handles POST /trips/{tripID}/cancel.
func (s *Server) cancelTrip(w http.ResponseWriter, r *http.Request) {
	id, tripID, ok := s.tripRequest(w, r)
	if !ok {
		return
	}

	if err := s.trips.CancelActive(r.Context(), id, tripID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// approveTrip handles POST /trips/{tripID}/approve.
// Approving twice is a no-op; the response says so via already_approved.
func (s *Server) approveTrip(w http.ResponseWriter, r *http.Request) {
	id, tripID, ok := s.tripRequest(w, r)
	if !ok {
		return
	}

	trip, already, err := s.trips.Approve(r.Context(), id, tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trip":             toTripResponse(trip),
		"already_approved": already,
	})
}

// deleteTrip handles DELETE /trips/{tripID}.
func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, tripID, ok := s.tripRequest(w, r)
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id, tripID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listAudits handles GET /trips/{tripID}/audits.
func (s *Server) listAudits(w http.ResponseWriter, r *http.Request) {
	id, tripID, ok := s.tripRequest(w, r)
	if !ok {
		return
	}

	audits, err := s.trips.Audits(r.Context(), id, tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": audits})
}

// ---- plumbing --------------------------------------------------------------

// tripRequest extracts the caller identity and the {tripID} path parameter,
// writing the error response itself when either is missing.
func (s *Server) tripRequest(w http.ResponseWriter, r *http.Request) (auth.Identity, uuid.UUID, bool) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, domain.ErrPermission)
		return auth.Identity{}, uuid.Nil, false
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, "invalid trip id")
		return auth.Identity{}, uuid.Nil, false
	}
	return id, tripID, true
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

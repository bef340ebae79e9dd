// Package handler — report.go implements GET /students/{studentID}/report.
// Returns the certification report data consumed by the external renderer.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/pkordes/permit-log/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV report.
var csvHeaders = []string{"date", "start", "end", "minutes", "day_or_night", "approved_by"}

// getReport handles GET /students/{studentID}/report.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
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

	report, err := s.reports.BuildReport(r.Context(), id, studentID, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSVReport(w, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeCSVReport encodes the report rows as CSV, one line per countable trip.
func writeCSVReport(w http.ResponseWriter, report domain.Report) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, row := range report.Rows {
		//nolint:errcheck
		cw.Write([]string{
			row.Date,
			row.Start,
			row.End,
			strconv.Itoa(row.Minutes),
			row.Label,
			row.ApprovedBy,
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="driving-hours.csv"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

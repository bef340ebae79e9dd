package domain

import (
	"sort"
	"time"
)

// ReportRow is one line in the certification report: a single countable trip
// shaped for the external renderer.
type ReportRow struct {
	Date       string `json:"date"`  // "01/02/2006"
	Start      string `json:"start"` // "3:04 PM"
	End        string `json:"end"`
	Minutes    int    `json:"minutes"`
	Label      string `json:"label"` // "Day" or "Night"
	ApprovedBy string `json:"approved_by"`
}

// Report is the finalized data handed to the external report renderer.
// Rows are sorted ascending by trip start time and cover countable trips
// only; Summary is computed over the same set.
type Report struct {
	StudentName  string      `json:"student_name"`
	PermitNumber string      `json:"permit_number,omitempty"`
	GeneratedAt  time.Time   `json:"generated_at"`
	Summary      Summary     `json:"summary"`
	TotalHours   float64     `json:"total_hours"`
	NightHours   float64     `json:"night_hours"`
	DayHours     float64     `json:"day_hours"`
	Rows         []ReportRow `json:"rows"`
}

// BuildReport shapes a student's countable trips into a Report.
// approverNames maps parent IDs to display names; unknown parents get an
// empty ApprovedBy rather than failing the whole report.
// Pure transformation: the input slice is not modified.
func BuildReport(student Student, trips []Trip, approverNames map[string]string, now time.Time) Report {
	countable := make([]Trip, 0, len(trips))
	for _, t := range trips {
		if t.Countable() {
			countable = append(countable, t)
		}
	}
	sort.Slice(countable, func(i, j int) bool {
		return countable[i].StartTime.Before(countable[j].StartTime)
	})

	rows := make([]ReportRow, 0, len(countable))
	for _, t := range countable {
		label := "Day"
		if t.IsNight {
			label = "Night"
		}
		row := ReportRow{
			Date:       t.StartTime.Format("01/02/2006"),
			Start:      t.StartTime.Format("3:04 PM"),
			Minutes:    t.Duration,
			Label:      label,
			ApprovedBy: approverNames[t.ParentID.String()],
		}
		if t.EndTime != nil {
			row.End = t.EndTime.Format("3:04 PM")
		}
		rows = append(rows, row)
	}

	summary := Summarize(countable)
	return Report{
		StudentName:  student.DisplayName(),
		PermitNumber: student.PermitNumber,
		GeneratedAt:  now,
		Summary:      summary,
		TotalHours:   summary.TotalHours(),
		NightHours:   summary.NightHours(),
		DayHours:     summary.DayHours(),
		Rows:         rows,
	}
}

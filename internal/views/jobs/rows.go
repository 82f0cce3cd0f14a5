// Package jobs builds the timers table shown for a selected process instance.
package jobs

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"serverless-workflow/backend/pkg/models"
)

const shortIDLength = 7

// Column headers, in display order
var Headers = []Header{
	{Title: "Timer Id", Field: "jobId"},
	{Title: "Status", Field: "status"},
	{Title: "Expiration", Field: "expirationTime"},
}

type Header struct {
	Title string `json:"title"`
	Field string `json:"field"`
}

// StatusIcon is the icon and optional colour shown next to a job status
type StatusIcon struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

var statusIcons = map[models.JobStatus]StatusIcon{
	models.JobStatusCanceled:  {Name: "not-interested"},
	models.JobStatusRetry:     {Name: "replay"},
	models.JobStatusScheduled: {Name: "schedule"},
	models.JobStatusExecuted:  {Name: "check", Color: "#3E8635"},
	models.JobStatusError:     {Name: "cancel", Color: "#C9190B"},
}

// Row is one rendered job
type Row struct {
	JobID          string      `json:"jobId"`
	JobIDTooltip   string      `json:"jobIdTooltip"`
	StatusIcon     *StatusIcon `json:"statusIcon,omitempty"`
	Status         string      `json:"status"`
	ExpirationTime string      `json:"expirationTime"`
	// ExpirationTooltip is the absolute expiration, empty when there is none
	ExpirationTooltip string `json:"expirationTooltip,omitempty"`
}

// Rows renders jobs relative to now. Nothing is cached: expiration labels
// are only as fresh as the now they were rendered with.
func Rows(jobs []models.Job, now time.Time) []Row {
	rows := make([]Row, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, NewRow(job, now))
	}
	return rows
}

// NewRow renders a single job relative to now
func NewRow(job models.Job, now time.Time) Row {
	row := Row{
		JobID:          ShortID(job.ID),
		JobIDTooltip:   job.ID,
		Status:         Capitalize(string(job.Status)),
		ExpirationTime: "-",
	}
	if icon, ok := statusIcons[job.Status]; ok {
		row.StatusIcon = &icon
	}
	if job.ExpirationTime != nil {
		row.ExpirationTime = Expiration(*job.ExpirationTime, now)
		row.ExpirationTooltip = job.ExpirationTime.Format(time.RFC1123Z)
	}
	return row
}

// Expiration labels exp as expired or expiring relative to now
func Expiration(exp, now time.Time) string {
	verb := "expires"
	if exp.Before(now) {
		verb = "expired"
	}
	return verb + " " + humanize.RelTime(exp, now, "ago", "from now")
}

// ShortID truncates an id to its first seven characters
func ShortID(id string) string {
	if r := []rune(id); len(r) > shortIDLength {
		return string(r[:shortIDLength])
	}
	return id
}

// Capitalize upper-cases the first character and lower-cases the rest
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

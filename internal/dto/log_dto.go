package dto

import (
	"time"

	"github.com/internlog/internlog-api/internal/models"
)

// DateLayout is the wire format for student-supplied activity dates.
const DateLayout = "2006-01-02"

// SubmitLogRequest carries a new daily activity log. Several logs may
// share the same date.
type SubmitLogRequest struct {
	Date     string `json:"date" validate:"required"`
	Activity string `json:"activity" validate:"required"`
}

// EditLogRequest carries a content edit for an existing log.
type EditLogRequest struct {
	Date     string `json:"date" validate:"required"`
	Activity string `json:"activity" validate:"required"`
}

// LogFilter narrows log listings by status, student and date range.
type LogFilter struct {
	Status    string
	StudentID uint
	From      string
	To        string
	Page      int
}

// LogResponse is the wire projection of a log entry.
type LogResponse struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"student_id"`
	Student   string    `json:"student,omitempty"`
	Date      string    `json:"date"`
	Activity  string    `json:"activity"`
	Status    string    `json:"status"`
	Feedback  *string   `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLogResponse maps a log entry to its wire projection.
func NewLogResponse(entry models.LogEntry) LogResponse {
	return LogResponse{
		ID:        entry.ID,
		StudentID: entry.StudentID,
		Student:   entry.Student.Username,
		Date:      entry.Date.Format(DateLayout),
		Activity:  entry.Activity,
		Status:    entry.Status.String(),
		Feedback:  entry.Feedback,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

// NewLogResponses maps a slice of entries.
func NewLogResponses(entries []models.LogEntry) []LogResponse {
	responses := make([]LogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewLogResponse(entry))
	}
	return responses
}

// LogListResponse wraps a paginated log listing.
type LogListResponse struct {
	Logs     []LogResponse `json:"logs"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ReviewDecisionRequest carries a supervisor's approve/disapprove call.
// Any other decision value is rejected outright.
type ReviewDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve disapprove"`
}

// FeedbackRequest carries supervisor feedback; it overwrites any prior
// feedback on the entry.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

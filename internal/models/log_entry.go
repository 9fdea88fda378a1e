package models

import "time"

// LogStatus is the closed set of review states for a log entry.
type LogStatus string

const (
	LogStatusPending     LogStatus = "pending"
	LogStatusApproved    LogStatus = "approved"
	LogStatusDisapproved LogStatus = "disapproved"
)

// Valid reports whether the status is one of the known constants.
func (s LogStatus) Valid() bool {
	switch s {
	case LogStatusPending, LogStatusApproved, LogStatusDisapproved:
		return true
	}
	return false
}

func (s LogStatus) String() string {
	return string(s)
}

// LogEntry is a student's daily activity record. A new entry starts
// pending; a supervisor decision moves it to approved or disapproved,
// and a content edit moves it back to pending with feedback cleared.
type LogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"index;not null" json:"student_id"`
	Student   User      `gorm:"foreignKey:StudentID" json:"-"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Activity  string    `gorm:"type:text;not null" json:"activity"`
	Status    LogStatus `gorm:"size:32;not null;default:pending" json:"status"`
	Feedback  *string   `gorm:"type:text" json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

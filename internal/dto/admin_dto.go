package dto

// RoleCounts aggregates accounts by role.
type RoleCounts struct {
	Students    int64 `json:"students"`
	Supervisors int64 `json:"supervisors"`
	Admins      int64 `json:"admins"`
}

// StatusCounts aggregates log entries by review status.
type StatusCounts struct {
	Pending     int64 `json:"pending"`
	Approved    int64 `json:"approved"`
	Disapproved int64 `json:"disapproved"`
}

// AdminDashboardResponse aggregates system-wide counts plus the most
// recent activity feed.
type AdminDashboardResponse struct {
	Users      RoleCounts    `json:"users"`
	Logs       StatusCounts  `json:"logs"`
	RecentLogs []LogResponse `json:"recent_logs"`
}

// StudentDashboardResponse aggregates a student's own log counts.
type StudentDashboardResponse struct {
	Total      int64         `json:"total"`
	ByStatus   StatusCounts  `json:"by_status"`
	RecentLogs []LogResponse `json:"recent_logs"`
}

// StudentListRequest filters the admin/supervisor student listing.
type StudentListRequest struct {
	Search       string
	SupervisorID uint
	Page         int
}

// StudentListResponse wraps a paginated student listing.
type StudentListResponse struct {
	Students []UserResponse `json:"students"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// AssignSupervisorRequest links a student to a supervisor; a nil
// supervisor id clears the assignment.
type AssignSupervisorRequest struct {
	SupervisorID *uint `json:"supervisor_id"`
}

// CreateSupervisorRequest provisions a supervisor account.
type CreateSupervisorRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// BulkLogActionRequest applies one action to a set of log ids. Missing
// ids are skipped without failing the rest.
type BulkLogActionRequest struct {
	IDs    []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
	Action string `json:"action" validate:"required,oneof=approve disapprove delete"`
}

// BulkLogActionResponse reports how many rows the action actually touched.
type BulkLogActionResponse struct {
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/models"
)

// LogEntryFilter narrows log listings. A zero field is ignored.
// SupervisorID scopes the listing to logs of students assigned to that
// supervisor.
type LogEntryFilter struct {
	StudentID    uint
	SupervisorID uint
	Status       models.LogStatus
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

// LogRepository exposes persistence helpers for log entries.
type LogRepository interface {
	Create(ctx context.Context, entry *models.LogEntry) error
	GetByID(ctx context.Context, id uint) (models.LogEntry, error)
	Update(ctx context.Context, entry *models.LogEntry) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter LogEntryFilter) ([]models.LogEntry, int64, error)
	Recent(ctx context.Context, limit int) ([]models.LogEntry, error)
	CountByStatus(ctx context.Context, studentID uint) (map[models.LogStatus]int64, error)
	StudentIDs(ctx context.Context, ids []uint) ([]uint, error)
	UpdateStatusBulk(ctx context.Context, ids []uint, status models.LogStatus) (int64, error)
	DeleteBulk(ctx context.Context, ids []uint) (int64, error)
}

type logRepository struct {
	db *gorm.DB
}

// NewLogRepository constructs the log repository.
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *logRepository) GetByID(ctx context.Context, id uint) (models.LogEntry, error) {
	var entry models.LogEntry
	err := r.db.WithContext(ctx).Preload("Student").First(&entry, id).Error
	if err != nil {
		return models.LogEntry{}, err
	}
	return entry, nil
}

func (r *logRepository) Update(ctx context.Context, entry *models.LogEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *logRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.LogEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *logRepository) List(ctx context.Context, filter LogEntryFilter) ([]models.LogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LogEntry{})

	if filter.StudentID != 0 {
		query = query.Where("log_entries.student_id = ?", filter.StudentID)
	}

	if filter.SupervisorID != 0 {
		query = query.Joins("JOIN users ON users.id = log_entries.student_id").
			Where("users.supervisor_id = ?", filter.SupervisorID)
	}

	if filter.Status != "" {
		query = query.Where("log_entries.status = ?", filter.Status)
	}

	if filter.From != nil {
		query = query.Where("log_entries.date >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("log_entries.date <= ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("log_entries.date DESC, log_entries.id DESC").Preload("Student")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var entries []models.LogEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *logRepository) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []models.LogEntry
	err := r.db.WithContext(ctx).
		Order("date DESC, id DESC").
		Limit(limit).
		Preload("Student").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByStatus aggregates entries per status; a zero studentID counts
// the whole table.
func (r *logRepository) CountByStatus(ctx context.Context, studentID uint) (map[models.LogStatus]int64, error) {
	type statusCount struct {
		Status models.LogStatus
		Count  int64
	}

	query := r.db.WithContext(ctx).Model(&models.LogEntry{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}

	var rows []statusCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.LogStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// StudentIDs returns the distinct owners of the given entries. Missing
// ids contribute nothing.
func (r *logRepository) StudentIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var studentIDs []uint
	err := r.db.WithContext(ctx).Model(&models.LogEntry{}).
		Where("id IN ?", ids).
		Distinct("student_id").
		Pluck("student_id", &studentIDs).Error
	if err != nil {
		return nil, err
	}
	return studentIDs, nil
}

// UpdateStatusBulk applies the status to every existing id; missing ids
// are silently skipped.
func (r *logRepository) UpdateStatusBulk(ctx context.Context, ids []uint, status models.LogStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Model(&models.LogEntry{}).
		Where("id IN ?", ids).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *logRepository) DeleteBulk(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.LogEntry{})
	return result.RowsAffected, result.Error
}

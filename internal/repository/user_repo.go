package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/models"
)

// StudentFilter narrows the student listing.
type StudentFilter struct {
	Search       string
	SupervisorID uint
	Page         int
	PageSize     int
}

// UserRepository exposes persistence helpers for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	SetSupervisor(ctx context.Context, studentID uint, supervisorID *uint) error
	ListStudents(ctx context.Context, filter StudentFilter) ([]models.User, int64, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
	DeleteStudent(ctx context.Context, id uint) error
	DeleteSupervisor(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	update := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) SetSupervisor(ctx context.Context, studentID uint, supervisorID *uint) error {
	update := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", studentID).
		Update("supervisor_id", supervisorID)
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) ListStudents(ctx context.Context, filter StudentFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleStudent)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(username) LIKE ?", like)
	}

	if filter.SupervisorID != 0 {
		query = query.Where("supervisor_id = ?", filter.SupervisorID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("username ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var students []models.User
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	type roleCount struct {
		Role  models.Role
		Count int64
	}

	var rows []roleCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// DeleteStudent removes a student account together with their log entries.
func (r *userRepository) DeleteStudent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.LogEntry{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND role = ?", id, models.RoleStudent).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteSupervisor clears supervisor_id on every assigned student before
// removing the supervisor row, in one transaction. No student is ever
// left referencing a missing supervisor.
func (r *userRepository) DeleteSupervisor(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{}).
			Where("supervisor_id = ?", id).
			Update("supervisor_id", nil).Error
		if err != nil {
			return err
		}

		result := tx.Where("id = ? AND role = ?", id, models.RoleSupervisor).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

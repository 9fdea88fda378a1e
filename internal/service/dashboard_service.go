package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/repository"
)

// DashboardInvalidator drops cached dashboard aggregates after a
// mutation so counts reflect the change immediately.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentID uint)
}

// DashboardService produces aggregated dashboard metrics for admins and
// students, cached in redis under a short TTL.
type DashboardService interface {
	DashboardInvalidator
	Admin(ctx context.Context) (dto.AdminDashboardResponse, error)
	Student(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type dashboardService struct {
	users    repository.UserRepository
	logs     repository.LogRepository
	cache    *redis.Client
	cacheTTL time.Duration
	feedSize int
	logger   zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(users repository.UserRepository, logs repository.LogRepository, cache *redis.Client, ttl time.Duration, feedSize int, logger zerolog.Logger) DashboardService {
	if feedSize <= 0 {
		feedSize = 10
	}
	return &dashboardService{
		users:    users,
		logs:     logs,
		cache:    cache,
		cacheTTL: ttl,
		feedSize: feedSize,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
	}
}

const adminDashboardKey = "dashboard:admin"

func studentDashboardKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *dashboardService) Admin(ctx context.Context) (dto.AdminDashboardResponse, error) {
	var cached dto.AdminDashboardResponse
	if s.readCache(ctx, adminDashboardKey, &cached) {
		return cached, nil
	}

	roleCounts, err := s.users.CountByRole(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, fmt.Errorf("failed to count users: %w", err)
	}

	statusCounts, err := s.logs.CountByStatus(ctx, 0)
	if err != nil {
		return dto.AdminDashboardResponse{}, fmt.Errorf("failed to count logs: %w", err)
	}

	recent, err := s.logs.Recent(ctx, s.feedSize)
	if err != nil {
		return dto.AdminDashboardResponse{}, fmt.Errorf("failed to load recent logs: %w", err)
	}

	response := dto.AdminDashboardResponse{
		Users: dto.RoleCounts{
			Students:    roleCounts[models.RoleStudent],
			Supervisors: roleCounts[models.RoleSupervisor],
			Admins:      roleCounts[models.RoleAdmin],
		},
		Logs:       newStatusCounts(statusCounts),
		RecentLogs: dto.NewLogResponses(recent),
	}

	s.writeCache(ctx, adminDashboardKey, response)
	return response, nil
}

func (s *dashboardService) Student(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	key := studentDashboardKey(studentID)

	var cached dto.StudentDashboardResponse
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	statusCounts, err := s.logs.CountByStatus(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("failed to count logs: %w", err)
	}

	recent, _, err := s.logs.List(ctx, repository.LogEntryFilter{
		StudentID: studentID,
		Page:      1,
		PageSize:  s.feedSize,
	})
	if err != nil {
		return dto.StudentDashboardResponse{}, fmt.Errorf("failed to load recent logs: %w", err)
	}

	byStatus := newStatusCounts(statusCounts)
	response := dto.StudentDashboardResponse{
		Total:      byStatus.Pending + byStatus.Approved + byStatus.Disapproved,
		ByStatus:   byStatus,
		RecentLogs: dto.NewLogResponses(recent),
	}

	s.writeCache(ctx, key, response)
	return response, nil
}

// Invalidate drops the admin aggregate and the affected student's
// aggregate; a zero studentID drops the admin aggregate only.
func (s *dashboardService) Invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}

	keys := []string{adminDashboardKey}
	if studentID != 0 {
		keys = append(keys, studentDashboardKey(studentID))
	}

	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read dashboard cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(payload), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("corrupt dashboard cache entry")
		return false
	}

	s.logger.Debug().Str("key", key).Msg("dashboard cache hit")
	return true
}

func (s *dashboardService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store dashboard cache")
	}
}

func newStatusCounts(counts map[models.LogStatus]int64) dto.StatusCounts {
	return dto.StatusCounts{
		Pending:     counts[models.LogStatusPending],
		Approved:    counts[models.LogStatusApproved],
		Disapproved: counts[models.LogStatusDisapproved],
	}
}

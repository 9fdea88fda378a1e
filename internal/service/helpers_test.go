package service

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint {
	return &v
}

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) add(user models.User) models.User {
	user.ID = m.nextID
	m.users[m.nextID] = user
	m.nextID++
	return user
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = m.nextID
	m.users[m.nextID] = *user
	m.nextID++
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = hash
	m.users[id] = user
	return nil
}

func (m *memoryUserRepo) SetSupervisor(ctx context.Context, studentID uint, supervisorID *uint) error {
	user, ok := m.users[studentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.SupervisorID = supervisorID
	m.users[studentID] = user
	return nil
}

func (m *memoryUserRepo) ListStudents(ctx context.Context, filter repository.StudentFilter) ([]models.User, int64, error) {
	filtered := make([]models.User, 0, len(m.users))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, user := range m.users {
		if user.Role != models.RoleStudent {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(user.Username), search) {
			continue
		}
		if filter.SupervisorID != 0 {
			if user.SupervisorID == nil || *user.SupervisorID != filter.SupervisorID {
				continue
			}
		}
		filtered = append(filtered, user)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Username < filtered[j].Username
	})

	total := int64(len(filtered))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(filtered) {
			return []models.User{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

func (m *memoryUserRepo) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	results := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		if user.Role == role {
			results = append(results, user)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Username < results[j].Username
	})
	return results, nil
}

func (m *memoryUserRepo) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	counts := make(map[models.Role]int64)
	for _, user := range m.users {
		counts[user.Role]++
	}
	return counts, nil
}

func (m *memoryUserRepo) DeleteStudent(ctx context.Context, id uint) error {
	user, ok := m.users[id]
	if !ok || user.Role != models.RoleStudent {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) DeleteSupervisor(ctx context.Context, id uint) error {
	user, ok := m.users[id]
	if !ok || user.Role != models.RoleSupervisor {
		return gorm.ErrRecordNotFound
	}
	for studentID, student := range m.users {
		if student.SupervisorID != nil && *student.SupervisorID == id {
			student.SupervisorID = nil
			m.users[studentID] = student
		}
	}
	delete(m.users, id)
	return nil
}

// memoryLogRepo keeps entries in a map. The users repo is consulted so
// loaded entries carry their student, matching the preload behaviour.
type memoryLogRepo struct {
	entries map[uint]models.LogEntry
	users   *memoryUserRepo
	nextID  uint
}

func newMemoryLogRepo(users *memoryUserRepo) *memoryLogRepo {
	return &memoryLogRepo{entries: make(map[uint]models.LogEntry), users: users, nextID: 1}
}

func (m *memoryLogRepo) attachStudent(entry models.LogEntry) models.LogEntry {
	if m.users != nil {
		if student, ok := m.users.users[entry.StudentID]; ok {
			entry.Student = student
		}
	}
	return entry
}

func (m *memoryLogRepo) Create(ctx context.Context, entry *models.LogEntry) error {
	entry.ID = m.nextID
	m.entries[m.nextID] = *entry
	m.nextID++
	return nil
}

func (m *memoryLogRepo) GetByID(ctx context.Context, id uint) (models.LogEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return models.LogEntry{}, gorm.ErrRecordNotFound
	}
	return m.attachStudent(entry), nil
}

func (m *memoryLogRepo) Update(ctx context.Context, entry *models.LogEntry) error {
	if _, ok := m.entries[entry.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *entry
	stored.Student = models.User{}
	m.entries[entry.ID] = stored
	return nil
}

func (m *memoryLogRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memoryLogRepo) List(ctx context.Context, filter repository.LogEntryFilter) ([]models.LogEntry, int64, error) {
	filtered := make([]models.LogEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.StudentID != 0 && entry.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		if filter.SupervisorID != 0 {
			loaded := m.attachStudent(entry)
			if loaded.Student.SupervisorID == nil || *loaded.Student.SupervisorID != filter.SupervisorID {
				continue
			}
		}
		if filter.From != nil && entry.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.Date.After(*filter.To) {
			continue
		}
		filtered = append(filtered, m.attachStudent(entry))
	}

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].Date.Equal(filtered[j].Date) {
			return filtered[i].Date.After(filtered[j].Date)
		}
		return filtered[i].ID > filtered[j].ID
	})

	total := int64(len(filtered))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(filtered) {
			return []models.LogEntry{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

func (m *memoryLogRepo) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	entries, _, err := m.List(ctx, repository.LogEntryFilter{Page: 1, PageSize: limit})
	return entries, err
}

func (m *memoryLogRepo) CountByStatus(ctx context.Context, studentID uint) (map[models.LogStatus]int64, error) {
	counts := make(map[models.LogStatus]int64)
	for _, entry := range m.entries {
		if studentID != 0 && entry.StudentID != studentID {
			continue
		}
		counts[entry.Status]++
	}
	return counts, nil
}

func (m *memoryLogRepo) StudentIDs(ctx context.Context, ids []uint) ([]uint, error) {
	seen := make(map[uint]struct{})
	results := make([]uint, 0, len(ids))
	for _, id := range ids {
		entry, ok := m.entries[id]
		if !ok {
			continue
		}
		if _, dup := seen[entry.StudentID]; dup {
			continue
		}
		seen[entry.StudentID] = struct{}{}
		results = append(results, entry.StudentID)
	}
	return results, nil
}

func (m *memoryLogRepo) UpdateStatusBulk(ctx context.Context, ids []uint, status models.LogStatus) (int64, error) {
	var affected int64
	for _, id := range ids {
		entry, ok := m.entries[id]
		if !ok {
			continue
		}
		entry.Status = status
		m.entries[id] = entry
		affected++
	}
	return affected, nil
}

func (m *memoryLogRepo) DeleteBulk(ctx context.Context, ids []uint) (int64, error) {
	var affected int64
	for _, id := range ids {
		if _, ok := m.entries[id]; !ok {
			continue
		}
		delete(m.entries, id)
		affected++
	}
	return affected, nil
}

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

type captureInvalidator struct {
	studentIDs []uint
}

func (c *captureInvalidator) Invalidate(ctx context.Context, studentID uint) {
	c.studentIDs = append(c.studentIDs, studentID)
}

type recordedActivity struct {
	actor Actor
	entry ActivityEntry
}

type captureRecorder struct {
	records []recordedActivity
}

func (c *captureRecorder) Record(ctx context.Context, actor Actor, entry ActivityEntry) {
	c.records = append(c.records, recordedActivity{actor: actor, entry: entry})
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/models"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func createLog(t *testing.T, db *gorm.DB, studentID uint, date time.Time, status models.LogStatus) models.LogEntry {
	t.Helper()
	entry := models.LogEntry{StudentID: studentID, Date: date, Activity: "activity", Status: status}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func TestLogRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLogRepository(db)

	sup := createUser(t, db, "sup", models.RoleSupervisor, nil)
	assigned := createUser(t, db, "assigned", models.RoleStudent, &sup.ID)
	other := createUser(t, db, "other", models.RoleStudent, nil)

	createLog(t, db, assigned.ID, day(t, "2024-01-10"), models.LogStatusPending)
	createLog(t, db, assigned.ID, day(t, "2024-01-12"), models.LogStatusApproved)
	createLog(t, db, other.ID, day(t, "2024-01-11"), models.LogStatusPending)

	entries, total, err := repo.List(context.Background(), LogEntryFilter{Status: models.LogStatusPending, PageSize: 25})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	entries, total, err = repo.List(context.Background(), LogEntryFilter{SupervisorID: sup.ID, PageSize: 25})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, entry := range entries {
		require.Equal(t, assigned.ID, entry.StudentID)
	}

	from := day(t, "2024-01-11")
	to := day(t, "2024-01-12")
	entries, total, err = repo.List(context.Background(), LogEntryFilter{From: &from, To: &to, PageSize: 25})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	// Newest activity date first.
	entries, _, err = repo.List(context.Background(), LogEntryFilter{PageSize: 25})
	require.NoError(t, err)
	require.Equal(t, day(t, "2024-01-12"), entries[0].Date)
}

func TestLogRepositoryListOutOfRangePage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLogRepository(db)

	student := createUser(t, db, "student", models.RoleStudent, nil)
	createLog(t, db, student.ID, day(t, "2024-02-01"), models.LogStatusPending)

	entries, total, err := repo.List(context.Background(), LogEntryFilter{Page: 9, PageSize: 25})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Empty(t, entries)
}

func TestLogRepositoryRecentOrdersByDateDesc(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLogRepository(db)

	student := createUser(t, db, "student", models.RoleStudent, nil)
	createLog(t, db, student.ID, day(t, "2024-03-01"), models.LogStatusPending)
	createLog(t, db, student.ID, day(t, "2024-03-05"), models.LogStatusPending)
	createLog(t, db, student.ID, day(t, "2024-03-03"), models.LogStatusPending)

	entries, err := repo.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, day(t, "2024-03-05"), entries[0].Date)
	require.Equal(t, day(t, "2024-03-03"), entries[1].Date)
	require.Equal(t, "student", entries[0].Student.Username)
}

func TestLogRepositoryCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLogRepository(db)

	a := createUser(t, db, "a", models.RoleStudent, nil)
	b := createUser(t, db, "b", models.RoleStudent, nil)
	createLog(t, db, a.ID, day(t, "2024-01-01"), models.LogStatusPending)
	createLog(t, db, a.ID, day(t, "2024-01-02"), models.LogStatusApproved)
	createLog(t, db, b.ID, day(t, "2024-01-03"), models.LogStatusApproved)

	counts, err := repo.CountByStatus(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[models.LogStatusPending])
	require.Equal(t, int64(2), counts[models.LogStatusApproved])

	counts, err = repo.CountByStatus(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[models.LogStatusPending])
	require.Equal(t, int64(1), counts[models.LogStatusApproved])
}

func TestLogRepositoryBulkSkipsMissingIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLogRepository(db)

	student := createUser(t, db, "student", models.RoleStudent, nil)
	first := createLog(t, db, student.ID, day(t, "2024-01-01"), models.LogStatusPending)
	second := createLog(t, db, student.ID, day(t, "2024-01-02"), models.LogStatusPending)

	affected, err := repo.UpdateStatusBulk(context.Background(), []uint{first.ID, second.ID, 999}, models.LogStatusApproved)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	reloaded, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, models.LogStatusApproved, reloaded.Status)

	affected, err = repo.DeleteBulk(context.Background(), []uint{second.ID, 999})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	_, err = repo.GetByID(context.Background(), second.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

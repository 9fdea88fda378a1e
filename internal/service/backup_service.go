package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/internlog/internlog-api/internal/database"
)

// ErrBackupUnsupported indicates the store is not a local file and
// cannot be backed up by copying.
var ErrBackupUnsupported = errors.New("backup requires a file-backed database")

// BackupService snapshots the live database file for download.
type BackupService interface {
	Create(ctx context.Context, actor Actor) (string, error)
}

type backupService struct {
	databaseURL string
	backupDir   string
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
}

// NewBackupService constructs the backup service.
func NewBackupService(databaseURL, backupDir string, activity ActivityRecorder, logger zerolog.Logger) BackupService {
	return &backupService{
		databaseURL: databaseURL,
		backupDir:   backupDir,
		activity:    activity,
		logger:      logger.With().Str("component", "backup_service").Logger(),
		now:         time.Now,
	}
}

// Create copies the sqlite file to a timestamped file under the backup
// directory and returns its path.
func (s *backupService) Create(ctx context.Context, actor Actor) (string, error) {
	if database.IsPostgresDSN(s.databaseURL) {
		return "", ErrBackupUnsupported
	}

	source, err := os.Open(s.databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to open database file: %w", err)
	}
	defer source.Close()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(s.databaseURL), filepath.Ext(s.databaseURL))
	target := filepath.Join(s.backupDir, fmt.Sprintf("%s-%s.db", base, s.now().Format("20060102-150405")))

	destination, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to copy database file: %w", err)
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "database.backup",
			EntityType: "database",
			Metadata:   map[string]interface{}{"file": filepath.Base(target)},
		})
	}

	s.logger.Info().Str("file", target).Msg("database backup created")
	return target, nil
}

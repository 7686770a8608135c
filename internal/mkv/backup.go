package mkv

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"scriptkit/internal/fileutil"
	"scriptkit/internal/logging"
)

// BackupSession protects an in-place edit: it takes a verified copy of the
// source next to it and holds an advisory lock so concurrent scriptkit
// invocations cannot edit the same file. Exactly one of Commit or Restore
// should be called before Close.
type BackupSession struct {
	source     string
	backupPath string
	lockPath   string
	lock       *flock.Flock
	logger     *slog.Logger
	done       bool
}

// NewBackupSession locks the source file and writes a verified backup copy.
func NewBackupSession(source string, logger *slog.Logger) (*BackupSession, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("backup: empty source path")
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	lockPath := source + ".scriptkit.lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("backup: lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("backup: %s is being edited by another scriptkit process", source)
	}

	dir := filepath.Dir(source)
	base := filepath.Base(source)
	backupPath := filepath.Join(dir, fmt.Sprintf(".%s.bak-%s", base, uuid.NewString()[:8]))
	if err := fileutil.CopyFileVerified(source, backupPath); err != nil {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
		return nil, fmt.Errorf("backup: copy %s: %w", source, err)
	}

	session := &BackupSession{
		source:     source,
		backupPath: backupPath,
		lockPath:   lockPath,
		lock:       lock,
		logger:     logging.NewComponentLogger(logger, "backup"),
	}
	session.logger.Debug("backup created",
		logging.String("source", source),
		logging.String("backup", backupPath),
	)
	return session, nil
}

// BackupPath returns the path of the backup copy.
func (s *BackupSession) BackupPath() string {
	if s == nil {
		return ""
	}
	return s.backupPath
}

// Commit accepts the edited file. The backup is removed unless keep is set.
func (s *BackupSession) Commit(keep bool) error {
	if s == nil || s.done {
		return nil
	}
	s.done = true
	if keep {
		return nil
	}
	if err := os.Remove(s.backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("backup: remove %s: %w", s.backupPath, err)
	}
	return nil
}

// Restore puts the backup copy back over the source after a failed or
// interrupted edit, then removes the backup.
func (s *BackupSession) Restore() error {
	if s == nil || s.done {
		return nil
	}
	s.done = true
	if err := fileutil.CopyFileVerified(s.backupPath, s.source); err != nil {
		return fmt.Errorf("backup: restore %s from %s: %w", s.source, s.backupPath, err)
	}
	if err := os.Remove(s.backupPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("backup copy left behind after restore",
			logging.String("backup", s.backupPath),
			logging.Error(err),
		)
	}
	s.logger.Info("original restored from backup", logging.String("source", s.source))
	return nil
}

// Close releases the advisory lock. Safe to call multiple times.
func (s *BackupSession) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	_ = os.Remove(s.lockPath)
	return err
}

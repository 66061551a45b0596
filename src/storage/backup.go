package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"stock-screener/src/logger"
)

// -----------------------------------------------------------------------------
// Backup / Retention
// -----------------------------------------------------------------------------

const backupPrefix = "prices_backup_"

// BackupStore copies the master database into backupDir under a timestamped
// name and prunes the oldest backups beyond keep. Returns the path of the
// new backup file.
func BackupStore(masterPath, backupDir string, keep int, log *logger.Logger) (string, error) {
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	stamp := time.Now().Format("2006-01-02_15-04-05")
	backupPath := filepath.Join(backupDir, fmt.Sprintf("%s%s.db", backupPrefix, stamp))

	if err := copyFile(masterPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to copy backup: %w", err)
	}
	log.Info("Backup created: %s", backupPath)

	if err := pruneBackups(backupDir, keep, log); err != nil {
		return backupPath, err
	}

	return backupPath, nil
}

// -----------------------------------------------------------------------------

// pruneBackups removes everything except the newest keep backups. Timestamps
// are embedded in the names, so lexical order is age order.
func pruneBackups(backupDir string, keep int, log *logger.Logger) error {
	if keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return err
	}

	var backups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) {
			backups = append(backups, e.Name())
		}
	}
	sort.Strings(backups)

	excess := len(backups) - keep
	if excess <= 0 {
		return nil
	}

	for _, name := range backups[:excess] {
		if err := os.Remove(filepath.Join(backupDir, name)); err != nil {
			return err
		}
		log.Info("Removed old backup: %s", name)
	}

	return nil
}

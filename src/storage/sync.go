package storage

import (
	"fmt"
	"io"
	"os"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
)

// -----------------------------------------------------------------------------
// Master → Working Sync
// -----------------------------------------------------------------------------

// SyncMasterToWorking copies the master database over the working database
// when the master exists and is newer (by mtime), or when no working copy
// exists yet. Returns true when a copy happened.
//
// Both files missing is fatal: there is no store to compute from. A missing
// master with a present working copy proceeds on the (possibly stale)
// working data with a warning.
//
// Not safe under concurrent invocations; callers serialize runs.
func SyncMasterToWorking(masterPath, workingPath string, log *logger.Logger) (bool, error) {
	masterInfo, masterErr := os.Stat(masterPath)
	workingInfo, workingErr := os.Stat(workingPath)

	if masterErr != nil {
		if workingErr != nil {
			return false, helpers.NewStoreUnavailable(
				fmt.Sprintf("master store missing: %s", masterPath), masterErr)
		}
		log.Warning("Master store missing (%s), using existing working copy", masterPath)
		return false, nil
	}

	if workingErr == nil && !masterInfo.ModTime().After(workingInfo.ModTime()) {
		return false, nil
	}

	if err := copyFile(masterPath, workingPath); err != nil {
		return false, fmt.Errorf("failed to sync master to working: %w", err)
	}

	log.Info("Synced master store -> working store")
	return true, nil
}

// -----------------------------------------------------------------------------

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

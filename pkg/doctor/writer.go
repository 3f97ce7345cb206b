package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupSuffix is appended to a file name to form its backup sidecar.
const BackupSuffix = ".bak"

// writeBackup stores the original content next to path unless a backup
// already exists.
func writeBackup(path string, original []byte) error {
	f, err := os.OpenFile(path+BackupSuffix, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating backup for %s: %w", path, err)
	}
	if _, err := f.Write(original); err != nil {
		f.Close()
		return fmt.Errorf("writing backup for %s: %w", path, err)
	}
	return f.Close()
}

// writeInPlace replaces the content of path, keeping its permissions.
func writeInPlace(path string, content []byte) error {
	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

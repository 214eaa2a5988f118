// Package fileutil provides file and directory helpers for development
// tasks: JSON and line-oriented I/O, copy/move/backup operations, glob
// search, and zip archiving.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Info describes a file or directory.
type Info struct {
	Name    string
	Path    string
	Size    int64
	SizeMB  float64
	ModTime time.Time
	IsDir   bool
	Ext     string
}

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ensureParent creates the parent directory of path.
func ensureParent(path string) error {
	return EnsureDir(filepath.Dir(path))
}

// CopyFile copies src to dst, creating parent directories and preserving
// the source file mode.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if err := ensureParent(dst); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy contents: %w", err)
	}
	return out.Sync()
}

// MoveFile moves src to dst, creating parent directories. It falls back
// to copy-then-delete when a rename crosses filesystems.
func MoveFile(src, dst string) error {
	if err := ensureParent(dst); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// DeleteFile removes the file if it exists, reporting whether it did.
func DeleteFile(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Stat returns information about a file or directory.
func Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Info{
		Name:    fi.Name(),
		Path:    abs,
		Size:    fi.Size(),
		SizeMB:  float64(fi.Size()) / (1024 * 1024),
		ModTime: fi.ModTime(),
		IsDir:   fi.IsDir(),
		Ext:     filepath.Ext(fi.Name()),
	}, nil
}

// BackupFile copies path to a timestamped sibling (or into backupDir when
// given) and returns the backup path. The backup name is
// "<stem>_<YYYYMMDD_HHMMSS><ext>".
func BackupFile(path, backupDir string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	dir := backupDir
	if dir == "" {
		dir = filepath.Dir(path)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(dir, stem+"_"+stamp+ext)

	if err := CopyFile(path, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}

// ABOUTME: Moves finished recordings into a dated archive tree
// ABOUTME: Renames when possible, copies across filesystems otherwise
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const stampLayout = "20060102_150405"

// Move relocates src to root/YYYY/MM/stem_YYYYMMDD_HHMMSS.ext and
// returns the destination path. Existing files are never overwritten;
// collisions get a numeric suffix.
func Move(src, root string, now time.Time) (string, error) {
	base := filepath.Base(src)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("archive: invalid source path %q", src)
	}

	dir := filepath.Join(root, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamped := fmt.Sprintf("%s_%s%s", stem, now.Format(stampLayout), ext)

	dst := filepath.Join(dir, stamped)
	for n := 2; ; n++ {
		if _, err := os.Lstat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(dir, fmt.Sprintf("%s_%s_%d%s", stem, now.Format(stampLayout), n, ext))
	}

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	// Rename fails across filesystems (the archive root may be a
	// different mount than the dictation share); fall back to copy
	// plus delete.
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("copying to archive: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("removing original after copy: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

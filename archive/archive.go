// Package archive copies finished scenario directories to a second location,
// for example from a scratch disk to long-term storage.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wise-brd/logger"

	"github.com/cockroachdb/errors"
)

// CopyDir copies src recursively into dst
func CopyDir(src string, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		targetPath := filepath.Join(dst, relPath)
		if info.IsDir() {
			return os.MkdirAll(targetPath, info.Mode().Perm()|0700)
		}
		return copyFile(path, targetPath)
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// ShouldCopyFolder reports whether a scenario directory holds a finished
// mark older than minElapsed and no lock
func ShouldCopyFolder(folderPath string, minElapsed time.Duration) (bool, error) {
	hasFinished := false
	hasLock := false
	var finishedFileTime time.Time

	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "finished") {
			hasFinished = true
			info, err := entry.Info()
			if err != nil {
				return false, err
			}
			// creation time is not portable, mtime is close enough
			if info.ModTime().After(finishedFileTime) {
				finishedFileTime = info.ModTime()
			}
		}
		if strings.HasPrefix(name, "lock") {
			hasLock = true
		}
	}
	return hasFinished && !hasLock && time.Since(finishedFileTime) > minElapsed, nil
}

// SyncOnce copies every eligible scenario directory of srcDir that is not
// yet present in dstDir and returns the names it copied
func SyncOnce(srcDir string, dstDir string, minElapsed time.Duration) ([]string, error) {
	log := logger.Named("archive")

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", srcDir)
	}

	copied := make([]string, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(srcDir, entry.Name())
		targetPath := filepath.Join(dstDir, entry.Name())

		if _, err := os.Stat(targetPath); err == nil {
			continue
		}

		ok, err := ShouldCopyFolder(folderPath, minElapsed)
		if err != nil {
			log.Warnw("failed to check folder", "folder", folderPath, "error", err)
			continue
		}
		if !ok {
			continue
		}

		log.Infow("copying scenario", "name", entry.Name(), "target", targetPath)
		// copy next to the target first so a crash never leaves a half copy
		tmpPath := targetPath + ".partial"
		if err := os.RemoveAll(tmpPath); err != nil {
			return copied, err
		}
		if err := CopyDir(folderPath, tmpPath); err != nil {
			log.Errorw("copy failed", "name", entry.Name(), "error", err)
			continue
		}
		if err := os.Rename(tmpPath, targetPath); err != nil {
			return copied, errors.Wrapf(err, "finalize %s", targetPath)
		}
		copied = append(copied, entry.Name())
	}
	return copied, nil
}

// Watch runs SyncOnce every interval until ctx is done
func Watch(ctx context.Context, srcDir string, dstDir string, interval time.Duration, minElapsed time.Duration) error {
	log := logger.Named("archive")
	log.Infow("watching", "src", srcDir, "dst", dstDir, "interval", interval, "min_elapsed", minElapsed)

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := SyncOnce(srcDir, dstDir, minElapsed); err != nil {
			log.Warnw("sync failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

const backupLayout = "2006-01-02_15-04-05"

// StartDailyBackup copies src into a timestamped folder under dst every day at
// hour:min and removes backups older than retention. It returns when ctx is done.
func StartDailyBackup(ctx context.Context, src, dst string, retention time.Duration, hour, min int) error {
	for {
		now := time.Now()
		next := nextRun(now, hour, min)
		log.WithField("at", next.Format(time.DateTime)).Info("next upload backup scheduled")

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if _, err := Backup(src, dst, time.Now()); err != nil {
			log.WithError(err).Error("failed to back up uploads")
		}
		CleanupOldBackups(dst, retention, time.Now())
	}
}

func nextRun(now time.Time, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Backup copies src to dst/<timestamp> and returns the new folder.
func Backup(src, dst string, at time.Time) (string, error) {
	dest := filepath.Join(dst, at.Format(backupLayout))
	if err := copyDir(src, dest); err != nil {
		return "", err
	}
	log.WithField("dir", dest).Info("uploads backed up")
	return dest, nil
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		s, d := filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			err = copyDir(s, d)
		} else {
			err = copyFile(s, d)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// CleanupOldBackups removes backup folders whose modification time is older than retention.
func CleanupOldBackups(dir string, retention time.Duration, now time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithError(err).Error("failed to read backup directory")
		return
	}

	cutoff := now.Add(-retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		info, err := os.Stat(p)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			log.WithError(err).WithField("dir", p).Error("failed to remove old backup")
			continue
		}
		log.WithField("dir", p).Info("removed old backup")
	}
}

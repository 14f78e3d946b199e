// Package uploads stores images sent as multipart form files and backs the
// upload folder up once a day.
package uploads

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// MountPath is where the upload folder is served.
const MountPath = "/uploads"

var ErrNoFile = errors.New("no file uploaded")

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

type Store struct {
	Dir        string
	PublicBase string
}

// Save writes the multipart file in field under Dir/subdir and returns its
// public URL. ErrNoFile is returned when the request has no such field.
func (s Store) Save(c *gin.Context, field, subdir string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", ErrNoFile
		}
		return "", err
	}

	dir := filepath.Join(s.Dir, subdir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	name := fmt.Sprintf("%d_%s", time.Now().Unix(), CleanName(fh.Filename))
	if err := c.SaveUploadedFile(fh, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}

	url := strings.TrimRight(s.PublicBase, "/") + path.Join(MountPath, subdir, name)
	log.WithFields(log.Fields{"file": fh.Filename, "url": url}).Info("file uploaded")
	return url, nil
}

// CleanName strips directories, collapses repeated image extensions
// ("a.jpg.jpg") and replaces anything outside [A-Za-z0-9_.-] with '_'.
func CleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for {
		e := strings.ToLower(filepath.Ext(base))
		if e != ".jpg" && e != ".jpeg" && e != ".png" && e != ".gif" && e != ".webp" {
			break
		}
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "file"
	}
	return base + unsafeChars.ReplaceAllString(ext, "_")
}

// Remove deletes the file behind a URL returned by Save. URLs outside the
// upload folder and files already gone are ignored.
func (s Store) Remove(url string) error {
	i := strings.Index(url, MountPath+"/")
	if i < 0 {
		return nil
	}
	// Cleaning the rooted remainder keeps ".." from leaving Dir.
	rel := filepath.FromSlash(path.Clean(url[i+len(MountPath):]))
	if err := os.Remove(filepath.Join(s.Dir, rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	log.WithField("url", url).Info("file removed")
	return nil
}

package uploads

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":          "photo.jpg",
		"my pic.jpg.jpg":     "my_pic.jpg",
		"../../etc/passwd":   "passwd",
		`C:\Users\x\a b.PNG`: "a_b.png",
		"@@.png":             "__.png",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanName(in), in)
	}
}

func TestSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	store := Store{Dir: dir, PublicBase: "https://api.example.com/"}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "burger.png")
	require.NoError(t, err)
	fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	url, err := store.Save(c, "image", "menu")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://api.example.com/uploads/menu/"), url)
	assert.True(t, strings.HasSuffix(url, "_burger.png"), url)

	files, err := os.ReadDir(filepath.Join(dir, "menu"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	require.NoError(t, store.Remove(url))
	require.NoError(t, store.Remove(url), "already gone")
	require.NoError(t, store.Remove("https://cdn.example.com/other.png"))
	files, err = os.ReadDir(filepath.Join(dir, "menu"))
	require.NoError(t, err)
	assert.Empty(t, files)

	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	c.Request.Header.Set("Content-Type", "application/json")
	_, err = store.Save(c, "image", "menu")
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestBackupAndCleanup(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "menu"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "menu", "a.png"), []byte("a"), 0o644))

	now := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	dest, err := Backup(src, dst, now)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(dest, "menu", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))

	old := filepath.Join(dst, "old")
	require.NoError(t, os.Mkdir(old, 0o755))
	past := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	CleanupOldBackups(dst, 4*24*time.Hour, time.Now())
	assert.NoDirExists(t, old)
	assert.DirExists(t, dest)
}

func TestNextRun(t *testing.T) {
	now := time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC), nextRun(now, 2, 0))
	assert.Equal(t, time.Date(2024, 1, 1, 4, 30, 0, 0, time.UTC), nextRun(now, 4, 30))
}

func TestStartDailyBackupStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	src, dst := t.TempDir(), t.TempDir()
	done := make(chan error, 1)
	go func() { done <- StartDailyBackup(ctx, src, dst, time.Hour, 2, 0) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("backup loop did not stop")
	}
}

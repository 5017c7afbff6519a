package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"confwatch/internal/config"
)

// WriteFile writes body to path, creating parent directories.
func WriteFile(t testing.TB, path, body string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteDataset writes a dataset document below the config's dataset directory
// and returns its absolute path.
func WriteDataset(t testing.TB, cfg *config.Config, rel, body string) string {
	t.Helper()

	path := filepath.Join(cfg.Paths.DatasetDir, filepath.FromSlash(rel))
	WriteFile(t, path, body)
	return path
}

// FileExists reports whether path exists.
func FileExists(t testing.TB, path string) bool {
	t.Helper()

	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		t.Fatalf("stat %s: %v", path, err)
	}
	return false
}

// ModTime returns the modification time of path.
func ModTime(t testing.TB, path string) int64 {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.ModTime().UnixNano()
}

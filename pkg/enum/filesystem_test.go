package enum

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/praetorian-inc/checkparens/pkg/types"
)

// collector gathers the base names yielded by an enumerator. Callbacks run
// concurrently, so it locks.
type collector struct {
	mu    sync.Mutex
	names []string
}

func (c *collector) callback(content []byte, blobID types.BlobID, prov types.Provenance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append(c.names, filepath.Base(prov.Path()))
	return nil
}

func (c *collector) sorted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.names...)
	sort.Strings(out)
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
}

func enumerateNames(t *testing.T, config Config) []string {
	t.Helper()
	var c collector
	if err := NewFilesystemEnumerator(config).Enumerate(context.Background(), c.callback); err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}
	return c.sorted()
}

func equalNames(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFilesystemEnumerator(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "file1.c"), "int main() { return 0; }")
	writeFile(t, filepath.Join(tmpDir, "file2.txt"), "(unbalanced")
	writeFile(t, filepath.Join(tmpDir, "subdir", "nested.go"), "func f() {}")

	var mu sync.Mutex
	var found []string
	err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		if blobID != types.ComputeBlobID(content) {
			t.Errorf("blob ID mismatch for %s", prov.Path())
		}
		if prov.Kind() != types.KindFile {
			t.Errorf("expected file provenance, got %s", prov.Kind())
		}
		mu.Lock()
		found = append(found, prov.Path())
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}

	if len(found) != 3 {
		t.Errorf("expected 3 files, got %d: %v", len(found), found)
	}
}

func TestFilesystemEnumerator_SingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "only.c")
	writeFile(t, path, "{}")
	writeFile(t, filepath.Join(tmpDir, "other.c"), "{}")

	equalNames(t, enumerateNames(t, Config{Root: path}), "only.c")
}

func TestFilesystemEnumerator_HiddenFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "visible.txt"), "visible")
	writeFile(t, filepath.Join(tmpDir, ".hidden.txt"), "hidden")
	writeFile(t, filepath.Join(tmpDir, ".git", "config"), "[core]")

	equalNames(t, enumerateNames(t, Config{Root: tmpDir}), "visible.txt")
	equalNames(t, enumerateNames(t, Config{Root: tmpDir, IncludeHidden: true}), ".hidden.txt", "config", "visible.txt")
}

func TestFilesystemEnumerator_MaxFileSize(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "small.txt"), "small")
	writeFile(t, filepath.Join(tmpDir, "large.txt"), string(make([]byte, 2000)))

	equalNames(t, enumerateNames(t, Config{Root: tmpDir, MaxFileSize: 1000}), "small.txt")
}

func TestFilesystemEnumerator_BinaryFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "text.txt"), "text content")
	writeFile(t, filepath.Join(tmpDir, "binary.bin"), "\x00\x01\x02(")

	equalNames(t, enumerateNames(t, Config{Root: tmpDir}), "text.txt")
}

func TestFilesystemEnumerator_Gitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gitignore"), "ignored.txt\n*.log\n")
	writeFile(t, filepath.Join(tmpDir, "included.txt"), "included")
	writeFile(t, filepath.Join(tmpDir, "ignored.txt"), "ignored")
	writeFile(t, filepath.Join(tmpDir, "test.log"), "ignored")

	equalNames(t, enumerateNames(t, Config{Root: tmpDir, IncludeHidden: true}), ".gitignore", "included.txt")
}

func TestFilesystemEnumerator_Exclude(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "app.js"), "f(x)")
	writeFile(t, filepath.Join(tmpDir, "app.min.js"), "f(x")
	writeFile(t, filepath.Join(tmpDir, "vendor", "lib.c"), "{")
	writeFile(t, filepath.Join(tmpDir, "src", "main.c"), "{}")

	config := Config{
		Root:    tmpDir,
		Exclude: []string{"*.min.js", "vendor/"},
	}
	equalNames(t, enumerateNames(t, config), "app.js", "main.c")
}

func TestFilesystemEnumerator_CurrentDirectory(t *testing.T) {
	// Scanning "." must not treat the root itself as hidden.
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "main.c"), "{}")

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	defer os.Chdir(originalDir)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp directory: %v", err)
	}

	equalNames(t, enumerateNames(t, Config{Root: "."}), "main.c")
}

func TestFilesystemEnumerator_RootIsCleaned(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "main.c"), "{}")
	t.Chdir(tmpDir)

	var paths []string
	err := NewFilesystemEnumerator(Config{Root: "./main.c"}).Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		paths = append(paths, prov.Path())
		return nil
	})
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "main.c" {
		t.Errorf("expected [main.c], got %v", paths)
	}
}

func TestFilesystemEnumerator_MissingRoot(t *testing.T) {
	err := NewFilesystemEnumerator(Config{Root: filepath.Join(t.TempDir(), "missing")}).
		Enumerate(context.Background(), func([]byte, types.BlobID, types.Provenance) error { return nil })
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFilesystemEnumerator_CallbackError(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.txt"), "a")

	boom := errors.New("boom")
	err := NewFilesystemEnumerator(Config{Root: tmpDir}).
		Enumerate(context.Background(), func([]byte, types.BlobID, types.Provenance) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected callback error, got %v", err)
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"current dir", ".", false},
		{"parent dir", "..", false},
		{"hidden file", ".hidden", true},
		{"hidden directory", ".git", true},
		{"normal file", "file.txt", false},
		{"dotfile", ".gitignore", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHidden(tt.filename); got != tt.want {
				t.Errorf("isHidden(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestFilesystemEnumerator_ContextCancellation(t *testing.T) {
	tmpDir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(tmpDir, string(rune('a'+i))+".txt"), "content")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFilesystemEnumerator(Config{Root: tmpDir}).
		Enumerate(ctx, func([]byte, types.BlobID, types.Provenance) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
}

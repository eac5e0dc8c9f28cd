package enum

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/praetorian-inc/checkparens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(members[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestIsArchive(t *testing.T) {
	assert.True(t, isArchive("src.zip"))
	assert.True(t, isArchive("SRC.ZIP"))
	assert.True(t, isArchive("release.7z"))
	assert.False(t, isArchive("main.c"))
	assert.False(t, isArchive("archive.tar.gz"))
}

func TestEnumerateArchive_Zip(t *testing.T) {
	content := buildZip(t, map[string]string{
		"src/good.c": "int main() { return (0); }",
		"src/bad.c":  "int main() { return (0; }",
		"blob.bin":   "\x00\x00(",
		"src/":       "",
	})

	got := map[string]string{}
	err := enumerateArchive(Config{}, "/tmp/src.zip", content, func(data []byte, blobID types.BlobID, prov types.Provenance) error {
		assert.Equal(t, types.KindArchive, prov.Kind())
		assert.Equal(t, types.ComputeBlobID(data), blobID)
		got[prov.Path()] = string(data)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"/tmp/src.zip:src/good.c": "int main() { return (0); }",
		"/tmp/src.zip:src/bad.c":  "int main() { return (0; }",
	}, got)
}

func TestEnumerateArchive_MaxFileSize(t *testing.T) {
	content := buildZip(t, map[string]string{
		"small.txt": "()",
		"large.txt": string(bytes.Repeat([]byte("("), 100)),
	})

	var paths []string
	err := enumerateArchive(Config{MaxFileSize: 10}, "a.zip", content, func(_ []byte, _ types.BlobID, prov types.Provenance) error {
		paths = append(paths, prov.Path())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.zip:small.txt"}, paths)
}

func TestEnumerateArchive_Corrupt(t *testing.T) {
	noop := func([]byte, types.BlobID, types.Provenance) error { return nil }

	assert.Error(t, enumerateArchive(Config{}, "broken.zip", []byte("not a zip"), noop))
	assert.Error(t, enumerateArchive(Config{}, "broken.7z", []byte("not a 7z"), noop))
}

func TestFilesystemEnumerator_Archives(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "bundle.zip"), buildZip(t, map[string]string{
		"inner.c": "{[]}",
	}), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "plain.c"), []byte("{}"), 0644))

	var mu sync.Mutex
	var paths []string
	cb := func(_ []byte, _ types.BlobID, prov types.Provenance) error {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, filepath.Base(prov.Path()))
		return nil
	}

	// Without archives the zip is binary and skipped.
	require.NoError(t, NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(context.Background(), cb))
	assert.Equal(t, []string{"plain.c"}, paths)

	paths = nil
	require.NoError(t, NewFilesystemEnumerator(Config{Root: tmpDir, Archives: true}).Enumerate(context.Background(), cb))
	sort.Strings(paths)
	assert.Equal(t, []string{"bundle.zip:inner.c", "plain.c"}, paths)
}

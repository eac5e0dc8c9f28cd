package enum

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/praetorian-inc/checkparens/pkg/types"
)

// archiveMember is the subset of zip.File and sevenzip.File used here.
type archiveMember interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

// isArchive reports whether path has a supported archive extension.
func isArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".7z":
		return true
	default:
		return false
	}
}

// enumerateArchive yields each text member of the archive at path.
func enumerateArchive(config Config, path string, content []byte, callback Callback) error {
	reader := bytes.NewReader(content)
	size := int64(len(content))

	var names []string
	var members []archiveMember

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		zr, err := zip.NewReader(reader, size)
		if err != nil {
			return fmt.Errorf("failed to open zip %s: %w", path, err)
		}
		for _, f := range zr.File {
			names = append(names, f.Name)
			members = append(members, f)
		}
	case ".7z":
		sr, err := sevenzip.NewReader(reader, size)
		if err != nil {
			return fmt.Errorf("failed to open 7z %s: %w", path, err)
		}
		for _, f := range sr.File {
			names = append(names, f.Name)
			members = append(members, f)
		}
	default:
		return fmt.Errorf("unsupported archive type: %s", path)
	}

	for i, m := range members {
		info := m.FileInfo()
		if info.IsDir() || config.tooLarge(info.Size()) {
			continue
		}

		data, err := readMember(m)
		if err != nil {
			return fmt.Errorf("failed to read %s in %s: %w", names[i], path, err)
		}
		if isBinary(data) {
			continue
		}

		prov := types.ArchiveProvenance{ArchivePath: path, MemberPath: names[i]}
		if err := callback(data, types.ComputeBlobID(data), prov); err != nil {
			return err
		}
	}
	return nil
}

func readMember(m archiveMember) ([]byte, error) {
	rc, err := m.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

package drive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"thai-legal-rag/internal/domain"
)

// LocalSource serves PDFs from a directory tree, for offline runs. File ids
// are slash-separated paths relative to the root.
type LocalSource struct {
	root string
}

func NewLocalSource(root string) *LocalSource {
	return &LocalSource{root: root}
}

// ListPDFs walks root/folderID; an empty folderID means the root itself.
func (s *LocalSource) ListPDFs(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(folderID))
	var out []domain.RemoteFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		out = append(out, domain.RemoteFile{ID: filepath.ToSlash(rel), Name: d.Name(), MimeType: MimeTypePDF})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *LocalSource) StreamPDF(_ context.Context, fileID string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(fileID))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("file id %q escapes source root", fileID)
	}
	return os.ReadFile(filepath.Join(s.root, clean))
}

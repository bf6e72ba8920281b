package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps media under a local directory that the HTTP server exposes
// at BaseURL.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates root (and the per-folder directories) if needed.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if !filepath.IsAbs(root) {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = filepath.Join(workDir, root)
	}
	for _, folder := range []string{FolderVideos, FolderThumbnails} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create media directory: %w", err)
		}
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory served as static files.
func (s *DiskStore) Root() string { return s.root }

func (s *DiskStore) Upload(ctx context.Context, folder string, file File) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	key := objectKey(folder, file.Name)
	dst := filepath.Join(s.root, filepath.FromSlash(key))

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(out, file.Body); err != nil {
		out.Close()
		os.Remove(dst)
		return Object{}, fmt.Errorf("failed to write media file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return Object{}, fmt.Errorf("failed to close media file: %w", err)
	}
	return Object{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *DiskStore) Delete(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validKey(publicID) {
		return fmt.Errorf("invalid media id %q", publicID)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(publicID)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

// Package media stores uploaded video and thumbnail files outside the
// database and hands back a public URL plus a public ID for later deletion.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	DriverDisk  = "disk"
	DriverMinio = "minio"

	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
)

// Object is a stored media file.
type Object struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// File is an upload handed to a Store.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// Store persists media objects. Delete of an object that does not exist
// succeeds.
type Store interface {
	Upload(ctx context.Context, folder string, file File) (Object, error)
	Delete(ctx context.Context, publicID string) error
}

var allowedExts = map[string]map[string]bool{
	FolderVideos:     {".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true},
	FolderThumbnails: {".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true},
}

// CheckExtension reports an error when name does not carry an extension
// accepted for folder.
func CheckExtension(folder, name string) error {
	exts, ok := allowedExts[folder]
	if !ok {
		return fmt.Errorf("unknown media folder %q", folder)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !exts[ext] {
		return fmt.Errorf("file type %q is not allowed for %s", ext, folder)
	}
	return nil
}

// objectKey returns a fresh key under folder that keeps the extension of name.
func objectKey(folder, name string) string {
	return path.Join(folder, uuid.New().String()+strings.ToLower(filepath.Ext(name)))
}

// validKey rejects keys that would escape the store root.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	clean := path.Clean(key)
	return clean == key && clean != "." && !strings.HasPrefix(clean, "..")
}

// Package storage handles files uploaded by users.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// MaxImageSize is the largest image that is accepted.
const MaxImageSize = 5 << 20

var ErrInvalidImage = errors.New("invalid image")

var imageTypes = map[string]string{
	"image/jpeg": ".jpeg",
	"image/jpg":  ".jpg",
	"image/gif":  ".gif",
	"image/png":  ".png",
}

// File is an uploaded file.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CheckImage returns ErrInvalidImage if f is not a jpeg, gif or png image
// of at most MaxImageSize bytes.
func CheckImage(f File) error {
	if _, ok := imageTypes[strings.ToLower(f.ContentType)]; !ok {
		return ErrInvalidImage
	}

	if f.Size <= 0 || f.Size > MaxImageSize {
		return ErrInvalidImage
	}

	return nil
}

// Ext returns the extension to store f under. The extension of the original
// file name is preferred, the content type is used as a fallback.
func Ext(f File) string {
	ext := strings.ToLower(path.Ext(f.Name))
	for _, known := range imageTypes {
		if ext == known {
			return ext
		}
	}

	return imageTypes[strings.ToLower(f.ContentType)]
}

// Uploader stores files under a key and returns the public location of
// the stored file.
type Uploader interface {
	Upload(ctx context.Context, key string, f File) (string, error)
	// Delete removes the file stored under key. Deleting a missing file
	// is not an error.
	Delete(ctx context.Context, key string) error
}

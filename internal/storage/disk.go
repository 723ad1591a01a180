package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DiskUploader stores files in a directory on the local filesystem.
// The files are expected to be served under BaseURL.
type DiskUploader struct {
	Dir     string
	BaseURL *url.URL
}

func (d *DiskUploader) Upload(ctx context.Context, key string, f File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(d.Dir, clean)
	err = os.MkdirAll(filepath.Dir(dst), 0o755)
	if err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(out, f.Body)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	err = out.Close()
	if err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return d.BaseURL.JoinPath(filepath.ToSlash(clean)).String(), nil
}

func (d *DiskUploader) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean, err := cleanKey(key)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(d.Dir, clean))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

// cleanKey turns key into a relative path that stays inside the upload dir.
func cleanKey(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}

	return clean, nil
}

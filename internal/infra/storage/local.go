package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDisk はファイルを root 配下に置き、publicURL + key で公開する。
type LocalDisk struct {
	root      string
	publicURL string
}

func NewLocalDisk(root, publicURL string) (*LocalDisk, error) {
	if root == "" {
		root = "./uploads"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage/local: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir: %w", err)
	}
	return &LocalDisk{root: abs, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root は静的配信に使うディレクトリ
func (d *LocalDisk) Root() string {
	return d.root
}

func (d *LocalDisk) Put(ctx context.Context, key string, body io.Reader, _ string) (string, error) {
	full, err := d.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}

	//途中で失敗したら半端なファイルを残さない
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage/local: create: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("storage/local: rename: %w", err)
	}
	return d.publicURL + "/" + filepath.ToSlash(strings.TrimLeft(key, "/")), nil
}

func (d *LocalDisk) Delete(ctx context.Context, key string) error {
	full, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", key, err)
	}
	return nil
}

// root の外を指す key は拒否
func (d *LocalDisk) path(key string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("storage/local: invalid key %q", key)
	}
	return full, nil
}

// Package storage persists detection artifacts on local disk and serves
// them under a stable URL prefix.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// FileStore はローカルディスク上の成果物ストアです。
// 書き込みは一時ファイル経由で行い、失敗時に中途半端なファイルを残しません。
type FileStore struct {
	baseDir   string
	urlPrefix string
}

// NewFileStore はベースディレクトリを作成してFileStoreを返します。
func NewFileStore(baseDir, urlPrefix string) (*FileStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	return &FileStore{baseDir: abs, urlPrefix: urlPrefix}, nil
}

// Save はrの内容をnameで保存し、配信用URLを返します。
// 一時ファイルに書き切ってからrenameするため、エラー時に部分的な成果物は残りません。
func (s *FileStore) Save(name string, r io.Reader) (string, error) {
	dst, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("finalize artifact: %w", err)
	}
	return s.URL(name), nil
}

// URL は保存済みファイル名に対応する配信用URLパスを返します。
func (s *FileStore) URL(name string) string {
	return path.Join(s.urlPrefix, name)
}

// Dir はベースディレクトリの絶対パスを返します。
func (s *FileStore) Dir() string {
	return s.baseDir
}

// SweepOlderThan はttlを超えて更新されていないファイルを削除し、削除件数を返します。
func (s *FileStore) SweepOlderThan(ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read base dir: %w", err)
	}

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// resolve はベースディレクトリ外へのパストラバーサルを拒否します。
func (s *FileStore) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty artifact name")
	}
	dst := filepath.Join(s.baseDir, filepath.Clean("/"+name))
	if !strings.HasPrefix(dst, s.baseDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid artifact name: %s", name)
	}
	return dst, nil
}

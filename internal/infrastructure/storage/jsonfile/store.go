package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/nfl-data-pipeline/internal/domain/record"
	"github.com/riskibarqy/nfl-data-pipeline/internal/usecase"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// Store writes one pretty-printed JSON document per dataset under a single directory.
type Store struct {
	dir string
}

var _ usecase.DatasetStore = (*Store)(nil)

func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("%w: output directory is required", usecase.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// WriteRecords stores records as a JSON array. A nil slice is written as [].
func (s *Store) WriteRecords(name string, records []record.Record) (string, error) {
	if records == nil {
		records = []record.Record{}
	}
	return s.WriteDocument(name, records)
}

func (s *Store) WriteDocument(name string, doc any) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	payload, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	// Write through a temp file in the same directory and rename over the target.
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}

	return path, nil
}

// ReadRecords loads a JSON array written by WriteRecords. Numbers decode as float64.
func (s *Store) ReadRecords(name string) ([]record.Record, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var out []record.Record
	if err := sonic.ConfigStd.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if out == nil {
		out = []record.Record{}
	}
	return out, nil
}

// path resolves name inside the store directory. Bare file names and paths already rooted at the
// store directory are accepted; anything escaping it is rejected.
func (s *Store) path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: file name is required", usecase.ErrInvalidInput)
	}

	cleaned := filepath.Clean(name)
	if rel, err := filepath.Rel(s.dir, cleaned); err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(cleaned) == filepath.IsAbs(s.dir) {
		cleaned = rel
	}
	if filepath.IsAbs(cleaned) || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("%w: file %q is outside %s", usecase.ErrInvalidInput, name, s.dir)
	}

	return filepath.Join(s.dir, cleaned), nil
}

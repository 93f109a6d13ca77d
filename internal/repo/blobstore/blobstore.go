// Package blobstore persists named JSON blobs on disk with
// load-if-exists / overwrite-on-save semantics. There is no transaction
// across blobs; each save stands alone.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

type Store interface {
	// Load reads the named blob into out. A missing blob is not an
	// error; it reports found=false and leaves out untouched.
	Load(name string, out any) (found bool, err error)

	// Save overwrites the named blob.
	Save(name string, in any) error
}

type fileStore struct {
	dir string
}

func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) Load(name string, out any) (bool, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read blob %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode blob %s: %w", name, err)
	}
	return true, nil
}

func (s *fileStore) Save(name string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode blob %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	return nil
}

func (s *fileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

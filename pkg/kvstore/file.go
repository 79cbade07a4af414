package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fileStore is the local-filesystem driver: one file per key under root.
type fileStore struct {
	root string // absolute root directory
}

func newFileStore(root string) *fileStore {
	// Make root absolute relative to working directory.
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &fileStore{root: root}
}

// abs maps a key to its on-disk path. Path separators in keys are
// flattened so a key can never escape the root.
func (f *fileStore) abs(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(f.root, safe)
}

func (f *fileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.abs(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kvstore/file: get %s: %w", key, err)
	}
	return data, true, nil
}

func (f *fileStore) Put(key string, value []byte) error {
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		return fmt.Errorf("kvstore/file: mkdir: %w", err)
	}
	if err := os.WriteFile(f.abs(key), value, 0o644); err != nil {
		return fmt.Errorf("kvstore/file: put %s: %w", key, err)
	}
	return nil
}

func (f *fileStore) Delete(key string) error {
	err := os.Remove(f.abs(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("kvstore/file: delete %s: %w", key, err)
	}
	return nil
}

func (f *fileStore) Exists(key string) bool {
	_, err := os.Stat(f.abs(key))
	return err == nil
}

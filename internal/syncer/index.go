package syncer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// NameIndex is the set of file basenames already present under a local root,
// compared case-insensitively. It is read-only once built.
type NameIndex map[string]struct{}

// BuildNameIndex walks root recursively and records every file basename.
// Directory structure is not recorded.
func BuildNameIndex(fs afero.Fs, root string) (NameIndex, error) {
	index := make(NameIndex)
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		index.add(filepath.Base(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

func (idx NameIndex) add(name string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	idx[strings.ToLower(name)] = struct{}{}
}

func (idx NameIndex) Contains(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, ok := idx[strings.ToLower(name)]
	return ok
}

func (idx NameIndex) Len() int {
	return len(idx)
}

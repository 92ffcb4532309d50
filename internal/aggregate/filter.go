package aggregate

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"s3dirstat/internal/models"
)

// Filter drops folder markers and ignored keys. Prefixes are exact,
// case-sensitive key prefixes whatever characters they contain; patterns
// are globs matched against the whole key with '/' as separator.
type Filter struct {
	prefixes []string
	patterns []glob.Glob
}

func NewFilter(prefixes, patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, entry := range prefixes {
		if entry != "" {
			f.prefixes = append(f.prefixes, entry)
		}
	}
	for _, entry := range patterns {
		if entry == "" {
			continue
		}
		g, err := glob.Compile(entry, '/')
		if err != nil {
			return nil, &models.ValidationError{Field: "ignore pattern", Msg: fmt.Sprintf("%q: %v", entry, err)}
		}
		f.patterns = append(f.patterns, g)
	}
	return f, nil
}

func (f *Filter) Accept(obj models.ObjectRecord) bool {
	if obj.IsFolderMarker() {
		return false
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(obj.Key, p) {
			return false
		}
	}
	for _, g := range f.patterns {
		if g.Match(obj.Key) {
			return false
		}
	}
	return true
}

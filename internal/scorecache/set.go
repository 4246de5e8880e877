package scorecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Fetcher returns raw score file lines overlapping a 0-based half-open interval.
// An empty result is a miss, not an error.
type Fetcher interface {
	Fetch(ctx context.Context, chrom string, start, end int64) ([]string, error)
}

// Set maps score file keys to fetchers. It is built once at startup and is
// read-only afterwards, so it may be shared by concurrent requests.
type Set struct {
	fetchers map[Key]Fetcher
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{fetchers: make(map[Key]Fetcher)}
}

// Add registers a fetcher for key, replacing any previous one.
func (s *Set) Add(k Key, f Fetcher) {
	s.fetchers[k] = f
}

// Has reports whether key has a backing fetcher.
func (s *Set) Has(k Key) bool {
	_, ok := s.fetchers[k]
	return ok
}

// Keys returns the keys with backing fetchers in stable order.
func (s *Set) Keys() []Key {
	keys := make([]Key, 0, len(s.fetchers))
	for k := range s.fetchers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Len returns the number of keys with backing fetchers.
func (s *Set) Len() int {
	return len(s.fetchers)
}

// Fetch returns the lines overlapping [start, end) on chrom from the file for key.
// A key without a backing file yields an empty result.
func (s *Set) Fetch(ctx context.Context, k Key, chrom string, start, end int64) ([]string, error) {
	f, ok := s.fetchers[k]
	if !ok {
		return nil, nil
	}
	return f.Fetch(ctx, chrom, start, end)
}

// Close closes every fetcher that holds resources.
func (s *Set) Close() error {
	var errs []error
	for _, f := range s.fetchers {
		if c, ok := f.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// OpenDir opens every conventionally named score file present in dir.
// Files that are absent are skipped; files that exist but cannot be opened are errors.
func OpenDir(dir string) (*Set, error) {
	s := NewSet()
	for _, k := range AllKeys() {
		path := filepath.Join(dir, k.FileName())
		if _, err := os.Stat(path); err != nil {
			continue
		}
		tf, err := OpenTabix(path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Add(k, tf)
	}
	return s, nil
}

// OpenFiles opens an explicit masking.class.assembly → path mapping.
func OpenFiles(files map[string]string) (*Set, error) {
	s := NewSet()
	for name, path := range files {
		k, err := ParseKey(name)
		if err != nil {
			s.Close()
			return nil, err
		}
		tf, err := OpenTabix(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("score file for %s: %w", k, err)
		}
		s.Add(k, tf)
	}
	return s, nil
}

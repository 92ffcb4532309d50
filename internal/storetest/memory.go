// Package storetest provides an in-memory lister.Store for engine tests.
package storetest

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"s3dirstat/internal/lister"
	"s3dirstat/internal/models"
)

var ErrInjected = errors.New("injected failure")

type object struct {
	body     []byte
	modified time.Time
}

// MemoryStore serves listings in key order, PageSize objects per page.
type MemoryStore struct {
	Bucket   string
	PageSize int
	// DownloadDelay is slept (honoring ctx) before each body is written.
	DownloadDelay time.Duration
	// FailList makes the Nth ListPage call (1-based) fail; zero disables.
	FailList int

	mu          sync.Mutex
	objects     map[string]object
	failKeys    map[string]bool
	listCalls   int
	requests    []lister.ListRequest
	downloads   []string
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func New(bucket string) *MemoryStore {
	return &MemoryStore{
		Bucket:   bucket,
		PageSize: 1000,
		objects:  make(map[string]object),
		failKeys: make(map[string]bool),
	}
}

// Put adds an object whose body is size bytes of filler.
func (s *MemoryStore) Put(key string, size int) *MemoryStore {
	return s.PutBody(key, []byte(strings.Repeat("x", size)))
}

func (s *MemoryStore) PutBody(key string, body []byte) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{
		body:     body,
		modified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(len(s.objects)) * time.Minute),
	}
	return s
}

// FailDownload makes downloads of key fail with ErrInjected.
func (s *MemoryStore) FailDownload(key string) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKeys[key] = true
	return s
}

func (s *MemoryStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *MemoryStore) Requests() []lister.ListRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]lister.ListRequest(nil), s.requests...)
}

func (s *MemoryStore) Downloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.downloads...)
	sort.Strings(out)
	return out
}

// MaxInFlight is the highest number of concurrent Download calls observed.
func (s *MemoryStore) MaxInFlight() int64 {
	return s.maxInFlight.Load()
}

func (s *MemoryStore) ListPage(ctx context.Context, req lister.ListRequest) (*lister.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	s.requests = append(s.requests, req)
	if s.FailList > 0 && s.listCalls == s.FailList {
		return nil, ErrInjected
	}

	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		if strings.HasPrefix(key, req.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if req.ContinuationToken != "" {
		n, err := strconv.Atoi(req.ContinuationToken)
		if err != nil {
			return nil, err
		}
		start = n
	}

	limit := s.PageSize
	if req.MaxKeys > 0 && int(req.MaxKeys) < limit {
		limit = int(req.MaxKeys)
	}

	page := &lister.Page{}
	i := start
	for ; i < len(keys) && len(page.Objects)+len(page.CommonPrefixes) < limit; i++ {
		key := keys[i]
		if req.Delimiter != "" {
			rest := key[len(req.Prefix):]
			if idx := strings.Index(rest, req.Delimiter); idx >= 0 {
				common := req.Prefix + rest[:idx+len(req.Delimiter)]
				page.CommonPrefixes = append(page.CommonPrefixes, common)
				// Keys are sorted, so everything under common is contiguous;
				// step past it so the next page cannot report it again.
				for i+1 < len(keys) && strings.HasPrefix(keys[i+1], common) {
					i++
				}
				continue
			}
		}
		obj := s.objects[key]
		page.Objects = append(page.Objects, models.ObjectRecord{
			Key:          key,
			Size:         int64(len(obj.body)),
			LastModified: obj.modified,
		})
	}
	if i < len(keys) {
		page.IsTruncated = true
		page.NextContinuationToken = strconv.Itoa(i)
	}
	return page, nil
}

func (s *MemoryStore) Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		observed := s.maxInFlight.Load()
		if current <= observed || s.maxInFlight.CompareAndSwap(observed, current) {
			break
		}
	}

	if s.DownloadDelay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(s.DownloadDelay):
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	obj, ok := s.objects[key]
	fail := s.failKeys[key]
	s.mu.Unlock()

	if !ok {
		return 0, errors.New("NoSuchKey: " + key)
	}
	if fail {
		return 0, ErrInjected
	}

	n, err := w.WriteAt(obj.body, 0)
	if err != nil {
		return int64(n), err
	}

	s.mu.Lock()
	s.downloads = append(s.downloads, key)
	s.mu.Unlock()
	return int64(n), nil
}

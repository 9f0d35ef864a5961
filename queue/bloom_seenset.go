package queue

import (
	"fmt"
	"os"
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"
	mmap "github.com/edsrzf/mmap-go"
)

// BloomSeenSet is a disk-backed SeenSet for crawls expected to visit
// more URLs than comfortably fit in a Go map: a memory-mapped bloom
// filter keeps the resident memory footprint roughly constant
// regardless of crawl size, at the cost of a small false-positive
// rate (a URL may rarely be treated as already-seen and skipped).
// There are no false negatives: a URL that was genuinely admitted is
// never re-admitted.
type BloomSeenSet struct {
	mu        sync.Mutex
	filter    *bloom.BloomFilter
	file      *os.File
	mapped    mmap.MMap
	path      string
	count     uint64
	syncEvery uint64
	added     uint64
}

// NewBloomSeenSet creates a BloomSeenSet sized for expectedURLs with
// the given false-positive rate, backed by a temp file memory-mapped
// for constant-footprint access.
func NewBloomSeenSet(expectedURLs uint, falsePositiveRate float64) (*BloomSeenSet, error) {
	filter := bloom.NewWithEstimates(expectedURLs, falsePositiveRate)

	tmpFile, err := os.CreateTemp("", "blc-seen-*.bloom")
	if err != nil {
		return nil, fmt.Errorf("queue: create bloom backing file: %w", err)
	}
	path := tmpFile.Name()

	size := int64(filter.Cap())
	if err := tmpFile.Truncate(size); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("queue: size bloom backing file: %w", err)
	}

	mapped, err := mmap.MapRegion(tmpFile, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("queue: mmap bloom backing file: %w", err)
	}

	data, err := filter.MarshalBinary()
	if err != nil {
		_ = mapped.Unmap()
		_ = tmpFile.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("queue: marshal bloom filter: %w", err)
	}
	if len(data) > len(mapped) {
		_ = mapped.Unmap()
		_ = tmpFile.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("queue: bloom filter data (%d) exceeds mapped size (%d)", len(data), len(mapped))
	}
	copy(mapped, data)

	return &BloomSeenSet{
		filter:    filter,
		file:      tmpFile,
		mapped:    mapped,
		path:      path,
		syncEvery: 1000,
	}, nil
}

// TestAndSet reports true if key was newly added. Safe to use as the
// sole admission check: the underlying bloom filter has no false
// negatives, only a small false-positive rate.
func (b *BloomSeenSet) TestAndSet(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.filter.TestString(key) {
		return false
	}
	b.filter.AddString(key)
	b.added++
	b.count++

	if b.count >= b.syncEvery {
		_ = b.syncLocked()
	}
	return true
}

// Len returns the number of keys admitted. A new key that the bloom
// filter rejects as a false positive is not counted, so this can be
// lower than the number of distinct keys offered.
func (b *BloomSeenSet) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.added)
}

func (b *BloomSeenSet) syncLocked() error {
	data, err := b.filter.MarshalBinary()
	if err != nil {
		return fmt.Errorf("queue: marshal bloom filter: %w", err)
	}
	if len(data) <= len(b.mapped) {
		copy(b.mapped, data)
	}
	if err := b.mapped.Flush(); err != nil {
		return fmt.Errorf("queue: flush bloom mmap: %w", err)
	}
	b.count = 0
	return nil
}

// Close flushes any pending writes and removes the backing file.
func (b *BloomSeenSet) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	if b.count > 0 {
		if err := b.syncLocked(); err != nil {
			firstErr = err
		}
	}
	if b.mapped != nil {
		if err := b.mapped.Unmap(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("queue: unmap bloom backing file: %w", err)
		}
		b.mapped = nil
	}
	if b.file != nil {
		if err := b.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("queue: close bloom backing file: %w", err)
		}
		b.file = nil
	}
	if b.path != "" {
		if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("queue: remove bloom backing file: %w", err)
		}
		b.path = ""
	}
	return firstErr
}

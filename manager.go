// Package memmgr implements a general-purpose application-level memory
// manager that routes allocation requests to one of two specialised
// back-ends based on a configurable size threshold: a small-object
// allocator built from a segregated pool of fixed-size slab allocators,
// and a big-object allocator built on a coalescing free list indexed by
// an ordered map keyed on block size.
//
// The package is not safe for concurrent use; callers that share a
// Manager across goroutines must provide their own synchronisation.
package memmgr

import "go.uber.org/zap"

// Manager is the single entry point for both allocator back-ends,
// corresponding to spec.md §4.6's MemoryManager façade and
// _examples/original_source/MemoryManager/MemoryManager.cpp.
type Manager struct {
	threshold int

	small *SmallObjectAllocator
	big   *BigObjectAllocator
}

// New constructs the small- and big-object back-ends per cfg. All five
// configuration parameters (threshold aside) are immutable for the
// lifetime of the Manager once New returns.
func New(cfg Config) (*Manager, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	small, err := NewSmallObjectAllocator(cfg.SmallPageSize, cfg.SmallMax, cfg.SmallAlign, cfg.MinPerChunk, cfg.MaxPerChunk)
	if err != nil {
		return nil, err
	}
	big, err := NewBigObjectAllocator(cfg.BigTotal)
	if err != nil {
		return nil, err
	}

	if trace {
		logger.Info("memmgr.New", zap.Int("threshold", cfg.Threshold), zap.Int("bigTotal", cfg.BigTotal))
	}

	return &Manager{threshold: cfg.Threshold, small: small, big: big}, nil
}

// Close tears down both back-ends, releasing all OS memory they hold.
func (m *Manager) Close() error {
	var err error
	for _, pool := range m.small.pools {
		for _, c := range pool.chunks {
			if rerr := c.release(); rerr != nil && err == nil {
				err = rerr
			}
		}
	}
	if berr := m.big.Close(); berr != nil && err == nil {
		err = berr
	}
	m.small = nil
	m.big = nil
	return err
}

// Allocate routes n bytes to the big-object path if n is at or above the
// size threshold, otherwise to the small-object path (with doThrow=false).
func (m *Manager) Allocate(n int) ([]byte, error) {
	if trace {
		logger.Debug("memmgr.Allocate", zap.Int("size", n))
	}
	if n >= m.threshold {
		return m.big.Allocate(n)
	}
	return m.small.Allocate(n, false)
}

// Deallocate returns a block previously obtained from Allocate(n). The
// caller must pass the same n they requested: neither back-end records
// per-allocation size metadata, per spec.md §4.6.
func (m *Manager) Deallocate(p []byte, n int) {
	if trace {
		logger.Debug("memmgr.Deallocate", zap.Int("size", n))
	}
	if n >= m.threshold {
		m.big.Deallocate(p, n)
		return
	}
	m.small.Deallocate(p, n)
}

// SizeThreshold returns the current small/big routing boundary.
func (m *Manager) SizeThreshold() int { return m.threshold }

// SetSizeThreshold changes the small/big routing boundary. It is the one
// configuration parameter that remains mutable after New.
func (m *Manager) SetSizeThreshold(n int) { m.threshold = n }

// IsCorrupt audits both back-ends, supplementing spec.md §8's universal
// invariants with a single entry point mirroring the original demo's
// post-batch self-check.
func (m *Manager) IsCorrupt() bool {
	return m.small.IsCorrupt() || m.big.IsCorrupt()
}

// ManagerStats aggregates both back-ends' Stats for diagnostics.
type ManagerStats struct {
	Small SmallObjectStats
	Big   BigObjectStats
}

func (m *Manager) Stats() ManagerStats {
	return ManagerStats{Small: m.small.Stats(), Big: m.big.Stats()}
}

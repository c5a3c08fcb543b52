// Command memmgrdemo exercises a Manager the way
// _examples/original_source/MemoryManager/main.cpp does: allocate a spread
// of small and big sizes, deallocate them, and audit the result. This is
// the out-of-core program entry point spec.md §1 names as an external
// collaborator.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/go-alloc/memmgr"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	memmgr.SetLogger(logger)
	memmgr.SetTrace(true)

	m, err := memmgr.New(memmgr.Config{
		Threshold:     128,
		BigTotal:      1 << 20,
		SmallPageSize: 4096,
		SmallMax:      256,
		SmallAlign:    8,
	})
	if err != nil {
		logger.Fatal("memmgr.New failed", zap.Error(err))
	}
	defer m.Close()

	sizes := []int{8, 16, 64, 200, 1024, 4096}
	var blocks [][]byte
	for _, n := range sizes {
		b, err := m.Allocate(n)
		if err != nil {
			logger.Fatal("allocate failed", zap.Int("size", n), zap.Error(err))
		}
		blocks = append(blocks, b)
	}

	if m.IsCorrupt() {
		logger.Fatal("manager reports corruption after allocation batch")
	}

	for i, b := range blocks {
		m.Deallocate(b, sizes[i])
	}

	if m.IsCorrupt() {
		logger.Fatal("manager reports corruption after deallocation batch")
	}

	logger.Info("demo complete", zap.Any("stats", m.Stats()))
}

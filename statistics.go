package monomem

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slog"
)

// Statistics describes the current chunk layout of an allocator.
type Statistics struct {
	QtyChunks        int    // chunks in use
	QtyRecyclables   int    // chunks waiting for reuse
	HeapSize         uint64 // bytes of the chunks in use, headers included
	HeapSizeRecycled uint64 // bytes of the recyclable chunks
	AllocSize        uint64 // bytes handed out from chunks in use, alignment included
	ChunkWaste       uint64 // free bytes left behind in chunks that are no longer active
	CurrentChunkSize uint64
	CurrentChunkFree uint64
	NextChunkSize    uint64 // usable size of the next standard chunk
}

// DbgStatistics counts allocator events. Counters without the InclResets
// suffix restart with every Reset.
type DbgStatistics struct {
	QtyAllocations                  uint64
	QtyAllocationsInclResets        uint64
	QtyTrivialAllocations           uint64 // served by the active chunk
	QtyTrivialAllocationsInclResets uint64
	AllocSize                       uint64
	AllocSizeInclResets             uint64
	AlignmentWaste                  uint64
	QtyChunkSizeExceeds             uint64
	QtyResets                       uint64
	QtyChunks                       uint64 // chunks ever created
	HeapSize                        uint64 // bytes of all chunks ever created
}

func (a *MonoAllocator) Stats() Statistics {
	a.checkUsable()
	s := Statistics{
		CurrentChunkSize: uint64(a.chunk.size()),
		CurrentChunkFree: uint64(a.chunk.free()),
		NextChunkSize:    uint64(a.nextChunksUsableSize),
	}
	for c := a.chunk; c != nil; c = c.previous {
		s.QtyChunks++
		s.HeapSize += uint64(c.size())
		s.AllocSize += uint64(c.used())
		if c != a.chunk {
			s.ChunkWaste += uint64(c.free())
		}
	}
	for c := a.recyclables; c != nil; c = c.previous {
		s.QtyRecyclables++
		s.HeapSizeRecycled += uint64(c.size())
	}
	return s
}

func (a *MonoAllocator) DbgStats() DbgStatistics {
	return a.dbgStats
}

func (s Statistics) String() string {
	var sb strings.Builder
	sb.WriteString("MonoAllocator Statistics:\n")
	fmt.Fprintf(&sb, "    Chunks:              %d\n", s.QtyChunks)
	fmt.Fprintf(&sb, "    Recyclable chunks:   %d\n", s.QtyRecyclables)
	fmt.Fprintf(&sb, "    Heap size:           %d\n", s.HeapSize)
	fmt.Fprintf(&sb, "    Heap size recycled:  %d\n", s.HeapSizeRecycled)
	fmt.Fprintf(&sb, "    Allocated:           %d\n", s.AllocSize)
	fmt.Fprintf(&sb, "    Chunk waste:         %d\n", s.ChunkWaste)
	fmt.Fprintf(&sb, "    Current chunk:       %d (free %d)\n", s.CurrentChunkSize, s.CurrentChunkFree)
	fmt.Fprintf(&sb, "    Next chunk size:     %d\n", s.NextChunkSize)
	return sb.String()
}

func (s DbgStatistics) String() string {
	var sb strings.Builder
	sb.WriteString("MonoAllocator Usage Statistics:\n")
	fmt.Fprintf(&sb, "    Allocations:         %d (incl. resets %d)\n", s.QtyAllocations, s.QtyAllocationsInclResets)
	fmt.Fprintf(&sb, "    Trivial allocations: %d (incl. resets %d)\n", s.QtyTrivialAllocations, s.QtyTrivialAllocationsInclResets)
	fmt.Fprintf(&sb, "    Allocated bytes:     %d (incl. resets %d)\n", s.AllocSize, s.AllocSizeInclResets)
	fmt.Fprintf(&sb, "    Chunks:              %d\n", s.QtyChunks)
	fmt.Fprintf(&sb, "    Resets:              %d\n", s.QtyResets)
	sb.WriteString("    Avg. alloc./chunk:   ")
	if s.QtyChunks == 0 {
		sb.WriteString("N/A\n")
	} else {
		fmt.Fprintf(&sb, "%d\n", s.QtyAllocationsInclResets/s.QtyChunks)
	}
	fmt.Fprintf(&sb, "    Allocated heap mem.: %d\n", s.HeapSize)
	fmt.Fprintf(&sb, "    Alignment waste:     %d\n", s.AlignmentWaste)
	fmt.Fprintf(&sb, "    Chunk size exceeds:  %d\n", s.QtyChunkSizeExceeds)
	return sb.String()
}

// LogStatistics writes both statistics of a to the package logger.
func LogStatistics(a *MonoAllocator) {
	s, d := a.Stats(), a.DbgStats()
	log().Info("mono allocator statistics",
		slog.Int("qtyChunks", s.QtyChunks),
		slog.Int("qtyRecyclables", s.QtyRecyclables),
		slog.Uint64("heapSize", s.HeapSize),
		slog.Uint64("heapSizeRecycled", s.HeapSizeRecycled),
		slog.Uint64("allocSize", s.AllocSize),
		slog.Uint64("chunkWaste", s.ChunkWaste),
		slog.Uint64("qtyAllocations", d.QtyAllocationsInclResets),
		slog.Uint64("alignmentWaste", d.AlignmentWaste),
		slog.Uint64("qtyChunkSizeExceeds", d.QtyChunkSizeExceeds),
		slog.Uint64("qtyResets", d.QtyResets),
	)
}

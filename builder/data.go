package builder

import (
	"time"

	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/octree"
)

// Snapshot format constants.
const (
	SnapshotMagic   = 0x314F5653 // "SVO1"
	SnapshotVersion = 1

	// maxSnapshotNodes bounds the allocation a corrupt header can request.
	maxSnapshotNodes = 1 << 26
)

var (
	ErrInvalidFormat      = errors.New("invalid snapshot format")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// FileHeader starts every snapshot.
type FileHeader struct {
	Magic   uint32
	Version uint32
	Count   uint32
}

// BuildStats reports what a mesh build produced and how long it took.
type BuildStats struct {
	Triangles  int           `json:"triangles"`
	BVHNodes   int           `json:"bvhNodes"`
	BVHDepth   int           `json:"bvhDepth"`
	GridCells  int           `json:"gridCells,omitempty"`
	Octree     octree.Stats  `json:"octree"`
	SourceTime time.Duration `json:"sourceTime"`
	OctreeTime time.Duration `json:"octreeTime"`
	Total      time.Duration `json:"total"`
}

// SnapshotInfo describes a snapshot file.
type SnapshotInfo struct {
	Filename   string       `json:"filename"`
	FileSize   int64        `json:"fileSize"`
	Version    uint32       `json:"version"`
	Compressed bool         `json:"compressed"`
	Stats      octree.Stats `json:"stats"`
	ModTime    time.Time    `json:"modTime"`
}

// BuildMemoryStats is a runtime memory sample taken after a build.
type BuildMemoryStats struct {
	TotalAlloc  uint64 `json:"totalAlloc"`
	Sys         uint64 `json:"sys"`
	HeapAlloc   uint64 `json:"heapAlloc"`
	HeapSys     uint64 `json:"heapSys"`
	NumGC       uint32 `json:"numGC"`
	OctreeNodes int    `json:"octreeNodes"`
}

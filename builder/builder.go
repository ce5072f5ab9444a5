// Package builder turns triangle meshes into voxel octrees and reads and
// writes octree snapshots.
package builder

import (
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/source"
)

// Builder builds octrees from meshes at a fixed depth.
type Builder struct {
	logger   *zap.SugaredLogger
	depth    int
	color    octree.ColorFunc
	useVoxel bool
	dilate   int32
	tree     *octree.VoxelOctree
}

// NewBuilder returns a builder producing trees of the given depth.
func NewBuilder(logger *zap.SugaredLogger, depth int) *Builder {
	return &Builder{
		logger: logger,
		depth:  depth,
	}
}

// SetColor sets the voxel color function; nil shades by distance.
func (b *Builder) SetColor(color octree.ColorFunc) {
	b.color = color
}

// SetUseVoxel switches from BVH queries to a voxelized grid, optionally
// dilated by radius cells.
func (b *Builder) SetUseVoxel(useVoxel bool, radius int32) {
	b.useVoxel = useVoxel
	b.dilate = radius
}

// GetOctree returns the last built tree.
func (b *Builder) GetOctree() *octree.VoxelOctree {
	return b.tree
}

// BuildMesh builds an octree that contains every voxel touching a triangle of tris.
func (b *Builder) BuildMesh(tris []geometry.Triangle) (*octree.VoxelOctree, BuildStats, error) {
	stats := BuildStats{Triangles: len(tris)}
	if len(tris) == 0 {
		return nil, stats, errors.New("mesh has no triangles")
	}

	start := time.Now()
	tree := octree.New()
	if b.useVoxel {
		grid := source.Voxelize(tris, b.depth).WithColor(b.color)
		if b.dilate > 0 {
			grid.Dilate(b.dilate)
		}
		stats.GridCells = grid.Count()
		stats.SourceTime = time.Since(start)
		b.logger.Debugw("mesh voxelized", "cells", stats.GridCells, "elapsed", stats.SourceTime)

		octreeStart := time.Now()
		tree.Build(b.depth, grid, grid.ColorAt)
		stats.OctreeTime = time.Since(octreeStart)
	} else {
		mesh := source.NewMesh(tris, b.color)
		bs := mesh.Tree().Stats()
		stats.BVHNodes, stats.BVHDepth = bs.Nodes, bs.MaxDepth
		stats.SourceTime = time.Since(start)
		b.logger.Debugw("bvh built", "triangles", bs.Triangles, "nodes", bs.Nodes,
			"leaves", bs.Leaves, "maxDepth", bs.MaxDepth, "elapsed", stats.SourceTime)

		octreeStart := time.Now()
		tree.Build(b.depth, mesh, mesh.ColorAt)
		stats.OctreeTime = time.Since(octreeStart)
		mesh.Release()
	}

	stats.Octree = tree.Stats()
	stats.Total = time.Since(start)
	b.logger.Infow("octree built", "depth", b.depth, "nodes", stats.Octree.Nodes,
		"voxels", stats.Octree.Voxels, "octree", stats.OctreeTime, "total", stats.Total)

	b.tree = tree
	return tree, stats, nil
}

// BuildAndSave builds tris and writes the snapshot to filename.
func (b *Builder) BuildAndSave(tris []geometry.Triangle, filename string) (BuildStats, error) {
	tree, stats, err := b.BuildMesh(tris)
	if err != nil {
		return stats, errors.Wrap(err, "failed to build octree")
	}
	if err := SaveFile(filename, tree.Nodes()); err != nil {
		return stats, errors.Wrap(err, "failed to save octree")
	}
	return stats, nil
}

// GetMemoryUsage samples the runtime after a build.
func (b *Builder) GetMemoryUsage() BuildMemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := BuildMemoryStats{
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		HeapAlloc:  m.HeapAlloc,
		HeapSys:    m.HeapSys,
		NumGC:      m.NumGC,
	}
	if b.tree != nil {
		stats.OctreeNodes = b.tree.Len()
	}
	return stats
}

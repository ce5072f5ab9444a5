package octree

import (
	"encoding/json"

	"go.uber.org/zap"
)

// dumpLimit caps the number of nodes Dump logs one by one.
const dumpLimit = 250

// OctreeExport is the JSON form of a tree.
type OctreeExport struct {
	Depth int          `json:"depth"`
	Stats Stats        `json:"stats"`
	Nodes []OctreeNode `json:"nodes"`
}

// Export returns the JSON-ready view of the tree.
func (o *VoxelOctree) Export() OctreeExport {
	nodes := o.nodes
	if nodes == nil {
		nodes = []OctreeNode{}
	}
	return OctreeExport{Depth: o.Depth(), Stats: o.Stats(), Nodes: nodes}
}

// ToJSON exports the flat node array as JSON.
func (o *VoxelOctree) ToJSON() ([]byte, error) {
	return json.Marshal(o.Export())
}

// Dump logs the node count and, when all is set and the tree is small, every node.
func (o *VoxelOctree) Dump(logger *zap.SugaredLogger, all bool) {
	logger.Infow("octree", "nodes", len(o.nodes), "depth", o.Depth())
	if !all || len(o.nodes) >= dumpLimit {
		return
	}
	for i, n := range o.nodes {
		logger.Infof("%d %s", i, n)
	}
}

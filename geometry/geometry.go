// Package geometry holds the primitives shared by the BVH, the octree builder and ray traversal.
package geometry

package octree

import "github.com/pkg/errors"

// ErrMalformedTree is returned when a node array references indexes outside itself.
var ErrMalformedTree = errors.New("malformed octree")

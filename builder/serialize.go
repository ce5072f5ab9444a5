package builder

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/octree"
)

var useGzip = true

// UseGzip toggles compression for Save. Load detects it either way.
func UseGzip(use bool) {
	useGzip = use
}

// Save writes nodes as a snapshot: a FileHeader followed by little-endian
// 7 x int32 records.
func Save(w io.Writer, nodes []octree.OctreeNode) error {
	if err := octree.NewFromNodes(nodes, false).Validate(); err != nil {
		return errors.Wrap(err, "invalid octree")
	}

	if useGzip {
		zw := gzip.NewWriter(w)
		if err := write(zw, nodes); err != nil {
			return err
		}
		return errors.Wrap(zw.Close(), "failed to flush gzip stream")
	}
	return write(w, nodes)
}

func write(w io.Writer, nodes []octree.OctreeNode) error {
	header := FileHeader{
		Magic:   SnapshotMagic,
		Version: SnapshotVersion,
		Count:   uint32(len(nodes)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if _, err := w.Write(PackNodes(nodes)); err != nil {
		return errors.Wrap(err, "failed to write nodes")
	}
	return nil
}

// Load reads a snapshot written by Save and validates it.
func Load(r io.Reader) ([]octree.OctreeNode, error) {
	nodes, _, err := load(r)
	return nodes, err
}

func load(r io.Reader) ([]octree.OctreeNode, bool, error) {
	br := bufio.NewReader(r)
	compressed := isGzip(br)

	var src io.Reader = br
	if compressed {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, true, errors.Wrap(err, "failed to open gzip stream")
		}
		defer zr.Close()
		src = zr
	}

	var header FileHeader
	if err := binary.Read(src, binary.LittleEndian, &header); err != nil {
		return nil, compressed, errors.Wrap(ErrInvalidFormat, "short header")
	}
	if header.Magic != SnapshotMagic {
		return nil, compressed, errors.Wrapf(ErrInvalidFormat, "magic %#x", header.Magic)
	}
	if header.Version != SnapshotVersion {
		return nil, compressed, errors.Wrapf(ErrUnsupportedVersion, "version %d", header.Version)
	}
	if header.Count > maxSnapshotNodes {
		return nil, compressed, errors.Wrapf(ErrInvalidFormat, "node count %d", header.Count)
	}

	buf := make([]byte, int(header.Count)*octree.NodeSize)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, compressed, errors.Wrap(ErrInvalidFormat, "truncated node records")
	}
	nodes, err := UnpackNodes(buf)
	if err != nil {
		return nil, compressed, err
	}
	if err := octree.NewFromNodes(nodes, false).Validate(); err != nil {
		return nil, compressed, err
	}
	return nodes, compressed, nil
}

func isGzip(br *bufio.Reader) bool {
	magic, err := br.Peek(2)
	return err == nil && magic[0] == 0x1f && magic[1] == 0x8b
}

// SaveFile writes a snapshot to filename.
func SaveFile(filename string, nodes []octree.OctreeNode) error {
	var buf bytes.Buffer
	if err := Save(&buf, nodes); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "failed to write file")
	}
	return nil
}

// LoadFile reads a snapshot from filename.
func LoadFile(filename string) ([]octree.OctreeNode, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	nodes, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return nodes, nil
}

// GetFileInfo loads a snapshot and reports its size and node statistics.
func GetFileInfo(filename string) (*SnapshotInfo, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get file info")
	}
	nodes, compressed, err := load(f)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}

	return &SnapshotInfo{
		Filename:   filename,
		FileSize:   fi.Size(),
		Version:    SnapshotVersion,
		Compressed: compressed,
		Stats:      octree.NewFromNodes(nodes, false).Stats(),
		ModTime:    fi.ModTime(),
	}, nil
}

// PackNodes lays nodes out as the raw little-endian buffer a GPU upload expects.
func PackNodes(nodes []octree.OctreeNode) []byte {
	buf := make([]byte, len(nodes)*octree.NodeSize)
	for i, n := range nodes {
		b := buf[i*octree.NodeSize:]
		for j, v := range n.Ints() {
			binary.LittleEndian.PutUint32(b[j*4:], uint32(v))
		}
	}
	return buf
}

// UnpackNodes is the inverse of PackNodes.
func UnpackNodes(buf []byte) ([]octree.OctreeNode, error) {
	if len(buf)%octree.NodeSize != 0 {
		return nil, errors.Wrapf(ErrInvalidFormat, "buffer length %d is not a multiple of %d", len(buf), octree.NodeSize)
	}

	nodes := make([]octree.OctreeNode, len(buf)/octree.NodeSize)
	for i := range nodes {
		b := buf[i*octree.NodeSize:]
		var v [octree.NodeInts]int32
		for j := range v {
			v[j] = int32(binary.LittleEndian.Uint32(b[j*4:]))
		}
		nodes[i] = octree.NodeFromInts(v)
	}
	return nodes, nil
}

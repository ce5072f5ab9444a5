package builder

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
)

// LoadOBJFile reads the triangles of a wavefront file.
func LoadOBJFile(filename string) ([]geometry.Triangle, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mesh")
	}
	defer f.Close()

	tris, err := LoadOBJ(f)
	if err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return tris, nil
}

// LoadOBJ reads "v" and "f" records. Faces with more than three corners are
// fan triangulated; texture and normal references are ignored.
func LoadOBJ(r io.Reader) ([]geometry.Triangle, error) {
	var (
		vertices []math32.Vector3
		tris     []geometry.Triangle
		lineNum  int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
			continue
		}

		switch tokens[0] {
		case "v":
			v, err := parseVec3(tokens)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			vertices = append(vertices, v)
		case "f":
			if len(tokens) < 4 {
				return nil, errors.Errorf(`line %d: unsupported syntax for "f"; expected at least 3 arguments; got %d`, lineNum, len(tokens)-1)
			}
			corners := make([]math32.Vector3, 0, len(tokens)-1)
			for _, tok := range tokens[1:] {
				idx, err := selectVertexIndex(strings.SplitN(tok, "/", 2)[0], len(vertices))
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineNum)
				}
				corners = append(corners, vertices[idx])
			}
			for i := 1; i+1 < len(corners); i++ {
				tris = append(tris, geometry.Triangle{A: corners[0], B: corners[i], C: corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read mesh")
	}
	return tris, nil
}

// selectVertexIndex resolves a 1-based or negative (relative to the end) index.
func selectVertexIndex(token string, count int) (int, error) {
	index, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return -1, errors.Wrapf(err, "bad vertex index %q", token)
	}

	offset := int(index) - 1
	if index < 0 {
		offset = count + int(index)
	}
	if index == 0 || offset < 0 || offset >= count {
		return -1, errors.Errorf("vertex index %d out of bounds", index)
	}
	return offset, nil
}

func parseVec3(tokens []string) (math32.Vector3, error) {
	if len(tokens) < 4 {
		return math32.Vector3{}, errors.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, tokens[0], len(tokens)-1)
	}

	var v [3]float32
	for i := range v {
		coord, err := strconv.ParseFloat(tokens[i+1], 32)
		if err != nil {
			return math32.Vector3{}, errors.Wrapf(err, "bad coordinate %q", tokens[i+1])
		}
		v[i] = float32(coord)
	}
	return math32.Vec3(v[0], v[1], v[2]), nil
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/scene"
)

const cubeOBJ = `v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
f 1 2 3 4
f 5 6 7 8
f 1 2 6 5
f 4 3 7 8
f 1 4 8 5
f 2 3 7 6
`

type testServer struct {
	t   *testing.T
	srv *Server
	h   http.Handler
	dir string
}

func newTestServer(t *testing.T) *testServer {
	dir := t.TempDir()
	srv := New(nil, Config{DataDir: dir, RefreshDelay: time.Hour}, zaptest.NewLogger(t).Sugar())
	return &testServer{t: t, srv: srv, h: srv.Handler(), dir: dir}
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func (ts *testServer) addDot() ObjectInfo {
	rec := ts.do("POST", "/api/objects", scene.ObjectConfig{
		Name:  "dot",
		Depth: 2,
		Source: scene.SourceConfig{
			Kind:  scene.KindPoint,
			Color: "#0000ff",
			Point: vec(0.1, 0.1, 0.1),
		},
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ObjectInfo](ts.t, rec)
}

var down = RayRequest{
	Origin:    vec(0.1, 5, 0.1),
	Direction: vec(0, -1, 0),
}

func TestObjects(t *testing.T) {
	ts := newTestServer(t)
	info := ts.addDot()
	assert.Equal(t, "dot", info.Name)
	assert.Equal(t, 2, info.Depth)
	assert.Equal(t, 1, info.Stats.Voxels)

	list := decode[[]ObjectInfo](t, ts.do("GET", "/api/objects", nil))
	require.Len(t, list, 1)
	assert.Equal(t, info.ID, list[0].ID)

	export := decode[octree.OctreeExport](t, ts.do("GET", "/api/objects/"+info.ID+"/octree", nil))
	assert.Equal(t, info.Stats.Nodes, len(export.Nodes))

	assert.Equal(t, http.StatusNotFound, ts.do("GET", "/api/objects/nope/octree", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do("POST", "/api/objects", scene.ObjectConfig{
		Name: "bad", Source: scene.SourceConfig{Kind: "teapot"},
	}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do("POST", "/api/objects", scene.ObjectConfig{
		Name: "inst", Instance: "nope",
	}).Code)

	inst := ts.do("POST", "/api/objects", scene.ObjectConfig{Name: "copy", Instance: "dot", Position: vec(2, 0, 0)})
	require.Equal(t, http.StatusCreated, inst.Code)
	assert.Equal(t, 2, decode[ObjectInfo](t, inst).Depth)

	assert.Equal(t, http.StatusOK, ts.do("DELETE", "/api/objects/"+info.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do("DELETE", "/api/objects/"+info.ID, nil).Code)
}

func TestRaycastAndPaint(t *testing.T) {
	ts := newTestServer(t)
	info := ts.addDot()

	hit := decode[RayResponse](t, ts.do("POST", "/api/raycast", down))
	require.True(t, hit.Found)
	assert.Equal(t, info.ID, hit.ID)
	assert.InDelta(t, 4.75, hit.Hit.Distance, 0.01)

	painted := decode[RayResponse](t, ts.do("POST", "/api/paint", RayRequest{
		Origin: down.Origin, Direction: down.Direction, Color: "#ff0000",
	}))
	require.True(t, painted.Found)

	hit = decode[RayResponse](t, ts.do("POST", "/api/raycast", down))
	require.True(t, hit.Found)
	assert.InDelta(t, 4.5, hit.Hit.Distance, 0.01, "painted voxel sits on top")

	miss := decode[RayResponse](t, ts.do("POST", "/api/raycast", RayRequest{Origin: down.Origin, Direction: vec(0, 1, 0)}))
	assert.False(t, miss.Found)

	assert.Equal(t, http.StatusBadRequest, ts.do("POST", "/api/raycast", RayRequest{Origin: down.Origin}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do("POST", "/api/paint", RayRequest{Direction: down.Direction, Color: "red"}).Code)
}

func TestSetVoxel(t *testing.T) {
	ts := newTestServer(t)
	info := ts.addDot()

	rec := ts.do("POST", "/api/objects/"+info.ID+"/voxel", SetVoxelRequest{Point: vec(-0.3, -0.3, -0.3), Color: "#00ff00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[ObjectInfo](t, rec).Stats.Voxels)

	assert.Equal(t, http.StatusNotFound, ts.do("POST", "/api/objects/nope/voxel", SetVoxelRequest{}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do("POST", "/api/objects/"+info.ID+"/voxel", SetVoxelRequest{Color: "zz"}).Code)

	req := httptest.NewRequest("POST", "/api/objects/"+info.ID+"/voxel", bytes.NewBufferString("{"))
	bad := httptest.NewRecorder()
	ts.h.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestSceneBuffers(t *testing.T) {
	ts := newTestServer(t)
	info := ts.addDot()
	ts.srv.Refresh()

	rec := ts.do("GET", "/api/scene/nodes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	count, err := strconv.Atoi(rec.Header().Get("X-Node-Count"))
	require.NoError(t, err)
	assert.Equal(t, info.Stats.Nodes, count)
	assert.Equal(t, count*octree.NodeSize, rec.Body.Len())

	records := decode[[]scene.TransformRecord](t, ts.do("GET", "/api/scene/transforms", nil))
	require.Len(t, records, 1)
	assert.Equal(t, int32(2), records[0].Depth)

	bin := ts.do("GET", "/api/scene/transforms?format=binary", nil)
	assert.Equal(t, scene.TransformRecordSize, bin.Body.Len())
}

func TestSaveLoad(t *testing.T) {
	ts := newTestServer(t)
	info := ts.addDot()

	rec := ts.do("POST", "/api/save", SaveRequest{ID: info.ID, Filename: "../dot.svo"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := os.Stat(filepath.Join(ts.dir, "dot.svo"))
	require.NoError(t, err, "file names stay inside the data dir")

	rec = ts.do("GET", "/api/snapshot/info?filename=dot.svo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, rec)["stats"].(map[string]interface{})["voxels"].(float64))

	rec = ts.do("POST", "/api/load", LoadRequest{Filename: "dot.svo", Name: "loaded"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	loaded := decode[ObjectInfo](t, rec)
	assert.Equal(t, "loaded", loaded.Name)
	assert.Equal(t, info.Stats, loaded.Stats)
	assert.Equal(t, 2, loaded.Depth)

	assert.Len(t, decode[[]ObjectInfo](t, ts.do("GET", "/api/objects", nil)), 2)
	assert.Equal(t, http.StatusNotFound, ts.do("POST", "/api/save", SaveRequest{ID: "nope", Filename: "x.svo"}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do("POST", "/api/load", LoadRequest{Filename: "missing.svo"}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do("GET", "/api/snapshot/info", nil).Code)
}

func TestMeshCache(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(ts.dir, "cube.obj"), []byte(cubeOBJ), 0644))

	for _, name := range []string{"a", "b"} {
		rec := ts.do("POST", "/api/objects", scene.ObjectConfig{
			Name:   name,
			Depth:  3,
			Source: scene.SourceConfig{Kind: scene.KindMesh, Path: "cube.obj"},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 512-216, decode[ObjectInfo](t, rec).Stats.Voxels)
	}

	stats := ts.srv.meshes.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)
	ts.addDot()
	ts.do("POST", "/api/raycast", down)

	rec := ts.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "svo_raycasts")
	assert.Contains(t, rec.Body.String(), "svo_object_builds")
}

func vec(x, y, z float32) math32.Vector3 {
	return math32.Vec3(x, y, z)
}

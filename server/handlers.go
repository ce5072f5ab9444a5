package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/o0olele/svo-go/builder"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/octree"
	"github.com/o0olele/svo-go/scene"
	"github.com/o0olele/svo-go/voxel"
)

// ObjectInfo is the listing entry of an object.
type ObjectInfo struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Transform voxel.Transform `json:"transform"`
	Depth     int             `json:"depth"`
	Stats     octree.Stats    `json:"stats"`
}

// SetVoxelRequest adds a voxel next to a surface point.
type SetVoxelRequest struct {
	Point  math32.Vector3 `json:"point"`
	Normal math32.Vector3 `json:"normal"`
	Color  string         `json:"color"`
}

// RayRequest is a world-space ray, with a color when painting.
type RayRequest struct {
	Origin    math32.Vector3 `json:"origin"`
	Direction math32.Vector3 `json:"direction"`
	Color     string         `json:"color,omitempty"`
}

// RayResponse reports a pick.
type RayResponse struct {
	Found bool          `json:"found"`
	ID    string        `json:"id,omitempty"`
	Name  string        `json:"name,omitempty"`
	Hit   octree.RayHit `json:"hit"`
}

// SaveRequest writes the octree of an object to a snapshot file.
type SaveRequest struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// LoadRequest adds an object from a snapshot file.
type LoadRequest struct {
	Filename  string          `json:"filename"`
	Name      string          `json:"name"`
	Transform voxel.Transform `json:"transform"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseColor(hex string) (colorful.Color, error) {
	if hex == "" {
		return colorful.Color{R: 1, G: 1, B: 1}, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, errors.Wrapf(err, "bad color %q", hex)
	}
	return c, nil
}

// dataPath keeps request file names inside the data directory.
func (s *Server) dataPath(name string) string {
	return filepath.Join(s.cfg.DataDir, filepath.Base(filepath.Clean("/"+name)))
}

func (s *Server) objectInfo(o *voxel.Object) ObjectInfo {
	return ObjectInfo{
		ID:        o.ID,
		Name:      o.Name,
		Transform: o.Transform,
		Depth:     o.Depth(),
		Stats:     o.Octree().Stats(),
	}
}

func (s *Server) listObjectsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	infos := make([]ObjectInfo, 0, s.scene.Len())
	for _, o := range s.scene.Objects() {
		infos = append(infos, s.objectInfo(o))
	}
	s.mu.Unlock()

	writeJSON(w, infos)
}

func (s *Server) addObjectHandler(w http.ResponseWriter, r *http.Request) {
	var req scene.ObjectConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Source.Path != "" {
		req.Source.Path = s.dataPath(req.Source.Path)
	}

	s.mu.Lock()
	obj, err := s.scene.AddConfig(req, scene.WithMeshLoader(s.loadMesh))
	if err != nil {
		s.mu.Unlock()
		status := http.StatusBadRequest
		if errors.Is(err, scene.ErrUnknownObject) {
			status = http.StatusNotFound
		}
		http.Error(w, fmt.Sprintf("Failed to add object: %v", err), status)
		return
	}
	start := time.Now()
	if req.Instance == "" && s.scene.BuildObject(obj) {
		instrumentBuild(start)
	}
	info := s.objectInfo(obj)
	s.mu.Unlock()

	s.logger.Infow("object added", "id", info.ID, "name", info.Name, "kind", req.Source.Kind,
		"nodes", info.Stats.Nodes, "elapsed", time.Since(start))
	s.scheduleRefresh()

	writeJSONStatus(w, http.StatusCreated, info)
}

func (s *Server) removeObjectHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	err := s.scene.Remove(id)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.scheduleRefresh()
	writeJSON(w, map[string]string{"status": "removed"})
}

func (s *Server) getOctreeHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	obj, err := s.scene.Get(mux.Vars(r)["id"])
	if err != nil {
		s.mu.Unlock()
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	data, err := obj.Octree().ToJSON()
	s.mu.Unlock()
	if err != nil {
		http.Error(w, "Failed to serialize octree", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) setVoxelHandler(w http.ResponseWriter, r *http.Request) {
	var req SetVoxelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := parseColor(req.Color)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	obj, err := s.scene.Get(mux.Vars(r)["id"])
	if err != nil {
		s.mu.Unlock()
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	err = obj.SetVoxel(req.Point, req.Normal, c)
	info := s.objectInfo(obj)
	s.mu.Unlock()
	if err != nil {
		s.logger.Errorw("set voxel failed", "id", info.ID, "error", err)
		http.Error(w, fmt.Sprintf("Failed to set voxel: %v", err), http.StatusInternalServerError)
		return
	}

	instrumentEdit("voxel")
	s.scheduleRefresh()
	writeJSON(w, info)
}

func (s *Server) raycastHandler(w http.ResponseWriter, r *http.Request) {
	var req RayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	result, ok, err := s.picker.Pick(req.Origin, req.Direction)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	instrumentRaycast(ok)
	writeJSON(w, RayResponse{Found: ok, ID: result.ID, Name: result.Name, Hit: result.Hit})
}

func (s *Server) paintHandler(w http.ResponseWriter, r *http.Request) {
	var req RayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	c, err := parseColor(req.Color)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	result, ok, err := s.picker.Paint(req.Origin, req.Direction, c)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	instrumentRaycast(ok)
	if ok {
		instrumentEdit("paint")
		s.scheduleRefresh()
	}
	writeJSON(w, RayResponse{Found: ok, ID: result.ID, Name: result.Name, Hit: result.Hit})
}

func (s *Server) nodesHandler(w http.ResponseWriter, r *http.Request) {
	s.bufMu.RLock()
	data, count, version := s.nodes, s.nodeCount, s.version
	s.bufMu.RUnlock()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Node-Count", strconv.Itoa(count))
	w.Header().Set("X-Scene-Version", strconv.FormatUint(version, 10))
	w.Write(data)
}

func (s *Server) transformsHandler(w http.ResponseWriter, r *http.Request) {
	s.bufMu.RLock()
	records, version := s.transforms, s.version
	s.bufMu.RUnlock()

	w.Header().Set("X-Scene-Version", strconv.FormatUint(version, 10))
	if r.URL.Query().Get("format") == "binary" {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(scene.PackTransforms(records))
		return
	}
	writeJSON(w, records)
}

func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	obj, err := s.scene.Get(req.ID)
	if err != nil {
		s.mu.Unlock()
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	nodes := obj.Octree().Clone().Nodes()
	s.mu.Unlock()

	filename := s.dataPath(req.Filename)
	if err := builder.SaveFile(filename, nodes); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save octree: %v", err), http.StatusInternalServerError)
		return
	}

	s.logger.Infow("octree saved", "id", req.ID, "file", filename, "nodes", len(nodes))
	writeJSON(w, map[string]string{"status": "saved"})
}

func (s *Server) loadHandler(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	begTime := time.Now()
	filename := s.dataPath(req.Filename)
	nodes, err := builder.LoadFile(filename)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load octree: %v", err), http.StatusBadRequest)
		return
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(filename)
	}
	obj := voxel.NewObject(name, voxel.DefaultDepth)
	if req.Transform.Scale > 0 {
		obj.Transform = req.Transform
	}
	obj.SetOctree(octree.NewFromNodes(nodes, false))

	s.mu.Lock()
	s.scene.Add(obj, nil)
	info := s.objectInfo(obj)
	s.mu.Unlock()

	s.logger.Infow("octree loaded", "file", filename, "nodes", len(nodes), "elapsed", time.Since(begTime))
	s.scheduleRefresh()

	writeJSONStatus(w, http.StatusCreated, info)
}

func (s *Server) snapshotInfoHandler(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "Missing filename parameter", http.StatusBadRequest)
		return
	}

	info, err := builder.GetFileInfo(s.dataPath(filename))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get file info: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, info)
}

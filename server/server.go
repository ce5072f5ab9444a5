// Package server exposes a voxel scene over HTTP.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/o0olele/svo-go/builder"
	"github.com/o0olele/svo-go/geometry"
	"github.com/o0olele/svo-go/math32"
	"github.com/o0olele/svo-go/query"
	"github.com/o0olele/svo-go/scene"
)

// Config configures a Server.
type Config struct {
	Addr string `yaml:"addr"`
	// StaticDir, when set, is served at /.
	StaticDir string `yaml:"static_dir"`
	// DataDir holds meshes and snapshots; request file names are resolved inside it.
	DataDir string `yaml:"data_dir"`
	// MeshCacheSize is the number of parsed meshes kept in memory.
	MeshCacheSize int `yaml:"mesh_cache_size"`
	// RefreshDelay debounces rebuilding the packed scene buffers after edits.
	RefreshDelay time.Duration `yaml:"refresh_delay"`
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		DataDir:       ".",
		MeshCacheSize: 16,
		RefreshDelay:  100 * time.Millisecond,
	}
}

// Server serves one scene. All scene mutations hold mu.
type Server struct {
	cfg    Config
	logger *zap.SugaredLogger

	mu     sync.Mutex
	scene  *scene.Scene
	picker *query.Picker
	meshes *math32.Cache[string, []geometry.Triangle]

	refresh func(func())

	bufMu      sync.RWMutex
	nodes      []byte
	nodeCount  int
	transforms []scene.TransformRecord
	version    uint64
}

// New returns a server for s. A nil scene starts empty.
func New(s *scene.Scene, cfg Config, logger *zap.SugaredLogger) *Server {
	if s == nil {
		s = scene.New()
	}
	def := DefaultConfig()
	if cfg.MeshCacheSize <= 0 {
		cfg.MeshCacheSize = def.MeshCacheSize
	}
	if cfg.RefreshDelay <= 0 {
		cfg.RefreshDelay = def.RefreshDelay
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}

	srv := &Server{
		cfg:     cfg,
		logger:  logger,
		scene:   s,
		picker:  query.NewPicker(s),
		meshes:  math32.NewCache[string, []geometry.Triangle](cfg.MeshCacheSize),
		refresh: debounce.New(cfg.RefreshDelay),
	}
	srv.Refresh()
	return srv
}

// Handler returns the API router wrapped in CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/objects", s.listObjectsHandler).Methods("GET")
	api.HandleFunc("/objects", s.addObjectHandler).Methods("POST")
	api.HandleFunc("/objects/{id}", s.removeObjectHandler).Methods("DELETE")
	api.HandleFunc("/objects/{id}/octree", s.getOctreeHandler).Methods("GET")
	api.HandleFunc("/objects/{id}/voxel", s.setVoxelHandler).Methods("POST")
	api.HandleFunc("/raycast", s.raycastHandler).Methods("POST")
	api.HandleFunc("/paint", s.paintHandler).Methods("POST")
	api.HandleFunc("/scene/nodes", s.nodesHandler).Methods("GET")
	api.HandleFunc("/scene/transforms", s.transformsHandler).Methods("GET")
	api.HandleFunc("/save", s.saveHandler).Methods("POST")
	api.HandleFunc("/load", s.loadHandler).Methods("POST")
	api.HandleFunc("/snapshot/info", s.snapshotInfoHandler).Methods("GET")

	r.Handle("/metrics", promhttp.Handler())
	if s.cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.StaticDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infow("server starting", "addr", s.cfg.Addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Infow("server shutting down")
		return errors.Wrap(httpServer.Shutdown(shutdownCtx), "failed to shut down")
	}
}

// Refresh rebuilds the packed scene buffers now.
func (s *Server) Refresh() {
	s.mu.Lock()
	nodes := s.scene.Nodes()
	transforms := s.scene.Transforms()
	s.mu.Unlock()

	packed := builder.PackNodes(nodes)

	s.bufMu.Lock()
	s.nodes = packed
	s.nodeCount = len(nodes)
	s.transforms = transforms
	s.version++
	s.bufMu.Unlock()

	sceneNodes.Set(float64(len(nodes)))
	s.logger.Debugw("scene buffers refreshed", "nodes", len(nodes), "objects", len(transforms))
}

// scheduleRefresh coalesces buffer rebuilds after a burst of edits.
func (s *Server) scheduleRefresh() {
	s.refresh(s.Refresh)
}

// loadMesh reads a mesh through the cache.
func (s *Server) loadMesh(path string) ([]geometry.Triangle, error) {
	return s.meshes.GetOrLoad(path, func() ([]geometry.Triangle, error) {
		s.logger.Debugw("loading mesh", "path", path)
		return builder.LoadOBJFile(path)
	})
}

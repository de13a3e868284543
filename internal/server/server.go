// Package server implements the local model viewer behind the serve
// command. It exposes the parsed model, its kinematic tree, and a
// rendered diagram over HTTP so a model can be inspected from a browser.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/janelia-anibody/mjcfutil/pkg/cache"
	"github.com/janelia-anibody/mjcfutil/pkg/ktree"
	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
	"github.com/janelia-anibody/mjcfutil/pkg/render"
)

// Options configures the viewer server.
type Options struct {
	Addr       string // listen address, defaults to localhost:8329
	BodiesOnly bool   // restrict the tree views to body elements

	// Cache stores rendered SVGs keyed by model content. Nil disables
	// caching.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration
}

// Server serves a single parsed model.
type Server struct {
	model     *mjcf.Model
	modelHash string
	opts      Options
	logger    *log.Logger
	server    *http.Server
}

// New constructs a viewer for the given model. modelXML is the raw file
// content used for cache keying.
func New(m *mjcf.Model, modelXML []byte, logger *log.Logger, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "localhost:8329"
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}

	s := &Server{
		model:     m,
		modelHash: cache.Hash(modelXML),
		opts:      opts,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/model.xml", s.handleModelXML)
	r.Get("/tree.json", s.handleTreeJSON)
	r.Get("/tree.svg", s.handleTreeSVG)

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run starts the server and blocks until it exits or errors.
func (s *Server) Run() error {
	s.logger.Info("model viewer listening", "addr", "http://"+s.server.Addr, "model", s.model.Name())
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down viewer")
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleModelXML(w http.ResponseWriter, r *http.Request) {
	out, err := mjcf.String(s.model, mjcf.WriteOptions{})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(out))
}

// treeJSON is the wire form of a kinematic tree.
type treeJSON struct {
	Model string         `json:"model"`
	Nodes []treeNodeJSON `json:"nodes"`
	Edges []ktree.Edge   `json:"edges"`
}

type treeNodeJSON struct {
	ID    string         `json:"id"`
	Tag   string         `json:"tag"`
	Depth int            `json:"depth"`
	Meta  ktree.Metadata `json:"meta,omitempty"`
}

func (s *Server) handleTreeJSON(w http.ResponseWriter, r *http.Request) {
	key := s.opts.Keyer.TreeKey(s.modelHash, cache.TreeKeyOpts{
		BodiesOnly: s.opts.BodiesOnly,
	})
	if body, hit, err := s.opts.Cache.Get(r.Context(), key); err == nil && hit {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
		return
	}

	tr, err := mjcf.Tree(s.model, mjcf.TreeOptions{BodiesOnly: s.opts.BodiesOnly})
	if err != nil {
		s.fail(w, err)
		return
	}

	out := treeJSON{Model: s.model.Name(), Edges: tr.Edges()}
	for depth := 0; depth <= tr.MaxDepth(); depth++ {
		for _, n := range tr.NodesAtDepth(depth) {
			out.Nodes = append(out.Nodes, treeNodeJSON{ID: n.ID, Tag: n.Tag, Depth: n.Depth, Meta: n.Meta})
		}
	}

	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.opts.Cache.Set(r.Context(), key, body, s.opts.TTL); err != nil {
		s.logger.Warn("cache write failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) handleTreeSVG(w http.ResponseWriter, r *http.Request) {
	key := s.opts.Keyer.ArtifactKey(s.modelHash, cache.ArtifactKeyOpts{
		Format:     "svg",
		BodiesOnly: s.opts.BodiesOnly,
	})
	if svg, hit, err := s.opts.Cache.Get(r.Context(), key); err == nil && hit {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
		return
	}

	tr, err := mjcf.Tree(s.model, mjcf.TreeOptions{BodiesOnly: s.opts.BodiesOnly})
	if err != nil {
		s.fail(w, err)
		return
	}
	svg, err := render.RenderSVG(render.ToDOT(tr, render.Options{}))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.opts.Cache.Set(r.Context(), key, svg, s.opts.TTL); err != nil {
		s.logger.Warn("cache write failed", "err", err)
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	name := s.model.Name()
	if name == "" {
		name = "unnamed model"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexHTML, name, name)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>%s</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem; }
  img  { max-width: 100%%; border: 1px solid #ddd; }
  nav a { margin-right: 1rem; }
</style>
</head>
<body>
<h1>%s</h1>
<nav>
  <a href="/tree.svg">tree.svg</a>
  <a href="/tree.json">tree.json</a>
  <a href="/model.xml">model.xml</a>
</nav>
<p><img src="/tree.svg" alt="kinematic tree"/></p>
</body>
</html>
`

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

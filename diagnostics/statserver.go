// Package diagnostics hosts the introspection tooling that sits outside
// the emulation core itself: a live runtime-stats HTTP view and a
// Graphviz dump of in-memory object graphs, both entirely optional and
// never touched by System's own construction or step loop.
package diagnostics

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// StatServer wraps statsview's runtime dashboard (goroutine count, GC
// pause times, heap size) behind a Start/Stop pair so a caller can tear
// it down cleanly rather than leaking the background goroutine statsview
// starts internally.
type StatServer struct {
	mgr *statsview.Manager
}

// NewStatServer configures the dashboard to listen on addr (e.g.
// ":18066") without starting it.
func NewStatServer(addr string) *StatServer {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	return &StatServer{mgr: statsview.New()}
}

// Start runs the dashboard's HTTP server in its own goroutine. Safe to
// call once; a second call before Stop is a caller error, matching
// statsview's own single-server-per-process design.
func (s *StatServer) Start() {
	go s.mgr.Start()
}

// Stop shuts the dashboard down.
func (s *StatServer) Stop() {
	s.mgr.Stop()
}

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-tether/tether/pkg/dom"
)

// maxInspectDepth bounds tree serialization for pathological documents.
const maxInspectDepth = 500

// inspectServer exposes a running application's state over HTTP for
// debugging:
//
//	GET /document     serialized element tree with controller markers
//	GET /controllers  connected instance table
//	GET /health       liveness probe
type inspectServer struct {
	app      *Application
	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	port     int
}

// ServeInspect starts the inspect server on addr ("" binds an ephemeral
// localhost port) and returns the port it listens on.
func (a *Application) ServeInspect(addr string) (int, error) {
	a.mu.Lock()
	if a.inspect != nil {
		port := a.inspect.port
		a.mu.Unlock()
		return port, fmt.Errorf("inspect server already running on port %d", port)
	}
	srv := &inspectServer{app: a}
	a.inspect = srv
	a.mu.Unlock()

	port, err := srv.start(addr)
	if err != nil {
		a.mu.Lock()
		if a.inspect == srv {
			a.inspect = nil
		}
		a.mu.Unlock()
		return 0, err
	}
	a.debugf("inspect server listening on port %d", port)
	return port, nil
}

// StopInspect shuts the inspect server down. Stop does this as well.
func (a *Application) StopInspect() {
	a.mu.Lock()
	srv := a.inspect
	a.inspect = nil
	a.mu.Unlock()
	if srv != nil {
		srv.stop()
	}
}

// InspectPort returns the port the inspect server listens on, or 0.
func (a *Application) InspectPort() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inspect == nil {
		return 0
	}
	return a.inspect.port
}

func (s *inspectServer) start(addr string) (int, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/document", s.handleDocument)
	mux.HandleFunc("/controllers", s.handleControllers)
	mux.HandleFunc("/health", s.handleHealth)

	// Bind before serving so callers fail fast on port conflicts.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("inspect server failed to listen on %s: %w", addr, err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	server := &http.Server{Addr: addr, Handler: mux}
	s.mu.Lock()
	s.server = server
	s.listener = listener
	s.port = port
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("tether: inspect server error: %v", err)
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
		}
	}()

	return port, nil
}

func (s *inspectServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.port = 0
	s.mu.Unlock()
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("tether: inspect server shutdown: %v", err)
	}
}

// inspectNode is the serialized form of one element.
type inspectNode struct {
	Tag         string            `json:"tag"`
	ID          string            `json:"id,omitempty"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Controllers []string          `json:"controllers,omitempty"`
	Children    []*inspectNode    `json:"children,omitempty"`
}

func (s *inspectServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("internal error: %v", rec), http.StatusInternalServerError)
		}
	}()

	a := s.app
	a.mu.Lock()
	var root *inspectNode
	if docEl, ok := a.doc.DocumentElement(); ok {
		root = serializeElement(docEl, a.schema.ControllerAttribute, 0)
	}
	a.mu.Unlock()

	writeInspectJSON(w, map[string]any{"document": root})
}

func serializeElement(el dom.Element, controllerAttr string, depth int) *inspectNode {
	if depth > maxInspectDepth {
		return &inspectNode{Tag: "...depth limit..."}
	}
	node := &inspectNode{Tag: el.Tag(), ID: el.ID()}
	for _, a := range el.Attrs() {
		if node.Attrs == nil {
			node.Attrs = make(map[string]string)
		}
		node.Attrs[a.Key] = a.Val
	}
	node.Controllers = el.Tokens(controllerAttr)
	for _, child := range el.Children() {
		node.Children = append(node.Children, serializeElement(child, controllerAttr, depth+1))
	}
	return node
}

func (s *inspectServer) handleControllers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("internal error: %v", rec), http.StatusInternalServerError)
		}
	}()

	a := s.app
	a.mu.Lock()
	instances := a.instancesLocked()
	identifiers := a.registry.Identifiers()
	a.mu.Unlock()

	writeInspectJSON(w, map[string]any{
		"registered": identifiers,
		"instances":  instances,
	})
}

func (s *inspectServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a := s.app
	a.mu.Lock()
	started := a.started
	instances := len(a.order)
	a.mu.Unlock()

	writeInspectJSON(w, map[string]any{
		"status":    "ok",
		"started":   started,
		"instances": instances,
	})
}

func writeInspectJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("marshal error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

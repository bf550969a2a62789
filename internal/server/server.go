// Package server exposes the runtime over HTTP: task CRUD, the tool catalog,
// the WebSocket event stream, health, and prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webpilot-ai/webpilot/internal/hub"
	"github.com/webpilot-ai/webpilot/internal/observability"
	"github.com/webpilot-ai/webpilot/internal/runtime"
	"github.com/webpilot-ai/webpilot/internal/tools"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// taskNotFoundMessage is the error body for lookups of unknown task IDs.
const taskNotFoundMessage = "Task not found."

// Config wires the server's dependencies.
type Config struct {
	// Host to bind, e.g. "127.0.0.1". Empty binds all interfaces.
	Host string

	// Port to listen on.
	Port int

	// Runtime is the task engine.
	Runtime *runtime.Runtime

	// Registry is the tool catalog.
	Registry *tools.Registry

	// Hub fans lifecycle events out to WebSocket subscribers. Optional;
	// without it /events returns 503.
	Hub *hub.Hub

	// Gatherer backs /metrics. Optional; defaults to the prometheus default
	// registry.
	Gatherer prometheus.Gatherer

	// Logger receives request logs.
	Logger *observability.Logger
}

// Server is the HTTP front end.
type Server struct {
	config   Config
	logger   *observability.Logger
	ws       http.Handler
	handler  http.Handler
	httpSrv  *http.Server
	listener net.Listener
}

// New builds a Server and its route table.
func New(config Config) *Server {
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{config: config, logger: config.Logger}
	if config.Hub != nil {
		s.ws = hub.NewWSHandler(config.Hub)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tools", s.handleTools)
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)
	mux.HandleFunc("/events", s.handleEvents)
	mux.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	s.handler = stripTrailingSlash(mux)

	return s
}

// stripTrailingSlash normalizes "/tasks/" to "/tasks" before routing. The
// root path is left alone.
func stripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r2 := r.Clone(r.Context())
			r2.URL.Path = strings.TrimSuffix(r.URL.Path, "/")
			next.ServeHTTP(w, r2)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	s.listener = listener
	s.httpSrv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.Error(context.Background(), "http server error", "error", err)
			}
		}
	}()

	if s.logger != nil {
		s.logger.Info(context.Background(), "http server listening", "addr", listener.Addr().String())
	}
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.config.Registry.List()})
}

// createTaskRequest is the POST /tasks body.
type createTaskRequest struct {
	Goal    string              `json:"goal"`
	Context *models.TaskContext `json:"context,omitempty"`
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"tasks": s.config.Runtime.ListTasks()})

	case http.MethodPost:
		var req createTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "Invalid request body.", http.StatusBadRequest)
			return
		}
		task, err := s.config.Runtime.CreateTask(r.Context(), req.Goal, req.Context)
		if err != nil {
			s.writeTaskError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"task": task})

	default:
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTaskByID routes GET /tasks/{id} and PATCH /tasks/{id}/context.
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")

	if id, ok := strings.CutSuffix(path, "/context"); ok {
		if r.Method != http.MethodPatch {
			jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleUpdateContext(w, r, id)
		return
	}

	if path == "" || strings.Contains(path, "/") {
		jsonError(w, taskNotFoundMessage, http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	task, ok := s.config.Runtime.GetTask(path)
	if !ok {
		jsonError(w, taskNotFoundMessage, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (s *Server) handleUpdateContext(w http.ResponseWriter, r *http.Request, id string) {
	var patch models.TaskContext
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		jsonError(w, "Invalid request body.", http.StatusBadRequest)
		return
	}

	task, err := s.config.Runtime.UpdateTaskContext(id, &patch)
	if err != nil {
		if errors.Is(err, runtime.ErrTaskNotFound) {
			jsonError(w, taskNotFoundMessage, http.StatusNotFound)
			return
		}
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.ws == nil {
		jsonError(w, "Event streaming is not enabled.", http.StatusServiceUnavailable)
		return
	}
	s.ws.ServeHTTP(w, r)
}

// writeTaskError maps classified runtime errors onto HTTP status codes.
func (s *Server) writeTaskError(w http.ResponseWriter, err error) {
	var taskErr *runtime.TaskError
	if errors.As(err, &taskErr) {
		switch taskErr.Kind {
		case runtime.KindValidation, runtime.KindConfig:
			jsonError(w, taskErr.Message, http.StatusBadRequest)
			return
		}
	}
	if s.logger != nil {
		s.logger.Error(context.Background(), "request failed", "error", err)
	}
	jsonError(w, "Internal server error.", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

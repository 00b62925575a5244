// Package httpapi is the thin REST backend: upstream project data is proxied
// from the reporting client and local notes and tasks live in the tracker
// store. All routes are JSON under /api/v1.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/reporting"
	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

// Server wires the route handlers to their backing stores.
type Server struct {
	reports *reporting.Client
	tracker *store.TrackerStore
	logger  *zap.Logger
}

// NewServer returns a server over the reporting client and tracker store.
func NewServer(reports *reporting.Client, tracker *store.TrackerStore, logger *zap.Logger) *Server {
	return &Server{reports: reports, tracker: tracker, logger: logger}
}

// Handler builds the route table. The standard mux is enough here: a handful
// of fixed routes with single-segment wildcards, no middleware chains.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /api/v1/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/v1/projects/search/{term}", s.handleSearch)
	mux.HandleFunc("GET /api/v1/projects/{number}", s.handleGetProject)
	mux.HandleFunc("GET /api/v1/projects/{number}/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/v1/projects/{number}/ccrs", s.handleCCRs)
	mux.HandleFunc("GET /api/v1/projects/{number}/orders", s.handleOrders)

	mux.HandleFunc("GET /api/v1/projects/{number}/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/v1/notes", s.handleCreateNote)
	mux.HandleFunc("DELETE /api/v1/notes/{id}", s.handleDeleteNote)

	mux.HandleFunc("GET /api/v1/projects/{number}/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/v1/tasks", s.handleCreateTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/complete", s.handleCompleteTask)

	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

// writeError maps sentinel errors to HTTP statuses: not-found to 404,
// validation failures to 400, an unreachable backing service to 503, and
// everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrInvalidName), errors.Is(err, types.ErrInvalidStatus),
		errors.Is(err, types.ErrMalformedBundle):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := s.reports.Projects(r.Context(), reporting.ProjectFilter{
		Status: q.Get("status"),
		PMName: q.Get("pm_name"),
		Region: q.Get("region"),
		Market: q.Get("market"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if projects == nil {
		projects = []reporting.Project{}
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.reports.Project(r.Context(), r.PathValue("number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.reports.Metrics(r.Context(), r.PathValue("number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleCCRs(w http.ResponseWriter, r *http.Request) {
	ccrs, err := s.reports.CCRs(r.Context(), r.PathValue("number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ccrs == nil {
		ccrs = []reporting.CCR{}
	}
	s.writeJSON(w, http.StatusOK, ccrs)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.reports.Orders(r.Context(), r.PathValue("number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if orders == nil {
		orders = []reporting.Order{}
	}
	s.writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.reports.Search(r.Context(), r.PathValue("term"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if results == nil {
		results = []reporting.Project{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.tracker.NotesForProject(r.PathValue("number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if notes == nil {
		notes = []store.Note{}
	}
	s.writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var note store.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body"})
		return
	}
	id, err := s.tracker.CreateNote(&note)
	if err != nil {
		s.writeError(w, err)
		return
	}
	note.ID = id
	s.writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid note id"})
		return
	}
	if err := s.tracker.DeleteNote(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tracker.TasksForProject(r.PathValue("number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []store.Task{}
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var task store.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body"})
		return
	}
	id, err := s.tracker.CreateTask(&task)
	if err != nil {
		s.writeError(w, err)
		return
	}
	task.ID = id
	s.writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid task id"})
		return
	}
	if err := s.tracker.CompleteTask(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": store.TaskCompleted})
}

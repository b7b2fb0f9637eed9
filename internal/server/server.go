package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/store"
)

const (
	msgNotFound = "Task not found"
	msgDeleted  = "Task deleted successfully"
	msgRunning  = "API is running!"

	maxBodyBytes = 1 << 20
)

type Options struct {
	// CORSOrigin is the single browser origin allowed to call the API.
	// Empty disables CORS headers.
	CORSOrigin string
}

type Server struct {
	store store.Store
	log   logr.Logger
	opts  Options
}

func New(st store.Store, log logr.Logger, opts Options) *Server {
	return &Server{store: st, log: log, opts: opts}
}

// Handler returns the routed API with logging and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /api/tasks", s.handleCreate)
	mux.HandleFunc("GET /api/tasks", s.handleList)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDelete)

	var h http.Handler = mux
	h = cors(s.opts.CORSOrigin, h)
	h = accessLog(s.log, h)
	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("server running", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, msgRunning)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.TaskInput
	if err := decodeBody(w, r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.store.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, opCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Keyword: q.Get("keyword"),
		Status:  model.Status(q.Get("status")),
	}
	tasks, err := s.store.Find(r.Context(), filter)
	if err != nil {
		s.fail(w, r, opList, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, opGet, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd model.TaskUpdate
	if err := decodeBody(w, r, &upd); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := s.store.UpdateByID(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		s.fail(w, r, opUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteByID(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, opDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgDeleted})
}

// fail maps a store error to its response and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op operation, err error) {
	code := statusFor(op, err)
	msg := err.Error()
	if code == http.StatusNotFound {
		msg = msgNotFound
	}
	if !errors.Is(err, store.ErrNotFound) && !model.IsValidation(err) {
		log, lerr := logr.FromContext(r.Context())
		if lerr != nil {
			log = s.log
		}
		log.Error(err, "store operation failed", "op", string(op), "path", r.URL.Path)
	}
	writeErr(w, code, msg)
}

// decodeBody reads a JSON object into v. An empty body decodes as {}.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

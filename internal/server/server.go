package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	v1 "chatrelay/internal/api/relay/v1"
	"chatrelay/internal/backend"
	"chatrelay/internal/backend/util"
	"chatrelay/internal/logger"
	"chatrelay/internal/prompt"
	"chatrelay/internal/server/metrics"
	"chatrelay/internal/server/middleware"
	logutils "chatrelay/internal/utils/logger"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"
	"golang.org/x/net/http2"
)

// Options configures the server
type Options struct {
	Port     string
	Registry *backend.Registry
	LogLevel string
	Timeout  string
	ExitCh   chan string
}

// Server relays inbound conversations to the registered model backends.
type Server struct {
	ctx      context.Context
	port     string
	registry *backend.Registry
	timeout  time.Duration
	exitCh   chan string
}

// New creates a new server instance
func New(ctx context.Context, opts Options) (*Server, error) {
	// set up the server's logger
	lgr := logger.New(
		ctx,
		"server",
		logger.LevelFromString(opts.LogLevel),
		opts.ExitCh,
	)
	ctx = logutils.ContextWithLogger(ctx, lgr)

	timeout, err := time.ParseDuration(opts.Timeout)
	if err != nil {
		timeout = time.Second * 30
	}

	if opts.Port == "" {
		return nil, fmt.Errorf("port is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	return &Server{
		ctx:      ctx,
		port:     opts.Port,
		registry: opts.Registry,
		timeout:  timeout,
		exitCh:   opts.ExitCh,
	}, nil
}

// Handler builds the routed and middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/chat/", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/upload/", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/compare/", s.handleCompare).Methods(http.MethodPost)
	r.HandleFunc("/models", s.handleModels).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return middleware.Wrap(s.ctx, r, middleware.Params{
		Timeout: s.timeout,
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:        ":" + s.port,
		Handler:     s.Handler(),
		BaseContext: func(l net.Listener) context.Context { return s.ctx },
	}

	// Enable HTTP/2 support
	if err := http2.ConfigureServer(srv, nil); err != nil {
		return fmt.Errorf("error configuring HTTP/2: %w", err)
	}

	logutils.FromContext(s.ctx).Infof(s.ctx, "Starting server on port %s", s.port)
	return srv.ListenAndServe()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lgr := logutils.FromContext(ctx)

	var conv v1.Conversation
	if err := json.NewDecoder(r.Body).Decode(&conv); err != nil {
		err = errors.Wrap(err, "error parsing request")
		lgr.Error(ctx, err.Error())
		util.WriteJSON(w, http.StatusBadRequest, v1.ErrorResponse{Error: err.Error()})
		return
	}

	be, err := s.registry.Get(conv.ModelName)
	if err != nil {
		lgr.Warnf(ctx, "Invalid model name %q", conv.ModelName)
		util.WriteJSON(w, http.StatusBadRequest, v1.ErrorResponse{Error: "Invalid model name."})
		return
	}

	text, err := s.invoke(ctx, be, prompt.Build(conv.Messages))
	if err != nil {
		lgr.Errorf(ctx, "Backend %s failed: %s", be.Name(), err.Error())
		util.WriteJSON(w, http.StatusInternalServerError, v1.ErrorResponse{Error: err.Error()})
		return
	}

	util.WriteJSON(w, http.StatusOK, v1.ChatResponse{Response: text})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lgr := logutils.FromContext(ctx)

	file, header, err := r.FormFile("file")
	if err != nil {
		err = errors.Wrap(err, "error reading uploaded file")
		lgr.Error(ctx, err.Error())
		util.WriteJSON(w, http.StatusInternalServerError, v1.ErrorResponse{Error: err.Error()})
		return
	}
	defer file.Close()

	// The file is read fully into memory and discarded; only its size is
	// reported back.
	content, err := io.ReadAll(file)
	if err != nil {
		err = errors.Wrap(err, "error reading uploaded file")
		lgr.Error(ctx, err.Error())
		util.WriteJSON(w, http.StatusInternalServerError, v1.ErrorResponse{Error: err.Error()})
		return
	}

	lgr.Debugf(ctx, "Received upload %q (%d bytes)", header.Filename, len(content))
	util.WriteJSON(w, http.StatusOK, v1.UploadResponse{
		Filename: header.Filename,
		Size:     len(content),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lgr := logutils.FromContext(ctx)

	var conv v1.Conversation
	if err := json.NewDecoder(r.Body).Decode(&conv); err != nil {
		err = errors.Wrap(err, "error parsing request")
		lgr.Error(ctx, err.Error())
		util.WriteJSON(w, http.StatusBadRequest, v1.ErrorResponse{Error: err.Error()})
		return
	}

	// model_name is ignored here: every registered backend gets the same
	// prompt, and one backend's failure never aborts the others.
	built := prompt.Build(conv.Messages)
	results := make(map[string]string)

	var wg conc.WaitGroup
	var mu sync.Mutex
	for name, be := range s.registry.All() {
		name, be := name, be
		wg.Go(func() {
			text, err := s.invoke(ctx, be, built)
			if err != nil {
				text = "Error: " + err.Error()
			}
			mu.Lock()
			results[name] = text
			mu.Unlock()
		})
	}
	wg.Wait()

	util.WriteJSON(w, http.StatusOK, results)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, v1.ModelsResponse{Models: s.registry.Names()})
}

// invoke times a single backend call and records its metrics.
func (s *Server) invoke(ctx context.Context, be backend.Backend, built string) (string, error) {
	start := time.Now()
	text, err := be.Complete(ctx, built)
	metrics.ObserveBackend(be.Name(), start, err)
	return text, err
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/unveil"
	"github.com/aretw0/unveil/internal/logging"
	"github.com/aretw0/unveil/pkg/content"
	"github.com/aretw0/unveil/pkg/domain"
	"github.com/aretw0/unveil/pkg/gate"
	"github.com/aretw0/unveil/pkg/observability"
	"github.com/aretw0/unveil/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultSweepInterval is how often Run fires due cascade reveals of idle views.
const DefaultSweepInterval = 100 * time.Millisecond

// Engine is the disclosure engine as seen by the HTTP host. *unveil.Engine satisfies it.
type Engine interface {
	Start(ctx context.Context, viewID string) *domain.State
	Apply(ctx context.Context, state *domain.State, sig domain.Signal) (domain.Outcome, error)
	FireDue(ctx context.Context, state *domain.State) []string
	NextDue(state *domain.State) (time.Time, bool)
	Items(state *domain.State) []domain.Item
	Now() time.Time
	Resolve(c content.Content) content.Resolved
}

// Server hosts views over HTTP.
type Server struct {
	engine   Engine
	sessions *session.Manager
	streams  *StreamManager
	doc      *openapi3.T
	handler  http.Handler

	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	interval time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records signals and active views into m and serves g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithSweepInterval sets the cascade sweep period used by Run.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewServer builds the HTTP host for engine, keeping views in sessions.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
		interval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.doc = doc
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract router: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(enableCORS)
	r.Use(s.validateRequests(router))

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/views", func(r chi.Router) {
		r.Get("/", s.ListViews)
		r.Post("/", s.CreateView)
		r.Route("/{viewID}", func(r chi.Router) {
			r.Get("/", s.GetView)
			r.Delete("/", s.DeleteView)
			r.Post("/signals", s.SendSignal)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	r.Post("/gate", s.EvaluateGate)

	s.handler = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Streams exposes the SSE fan-out.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc != nil && s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "unveil-http",
		"version":     strings.TrimSpace(unveil.Version),
		"api_version": apiVersion,
	})
}

// ListViews handles GET /views.
func (s *Server) ListViews(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"views": ids})
}

// CreateView handles POST /views. An existing view ID is reopened as is.
func (s *Server) CreateView(w http.ResponseWriter, r *http.Request) {
	var body CreateViewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var resolved *content.Resolved
	if body.Content != nil {
		res := s.engine.Resolve(content.Decode(body.Content))
		resolved = &res
	}

	viewID := body.ViewID
	if viewID == "" {
		viewID = uuid.NewString()
	}

	state, created, err := s.sessions.LoadOrStart(r.Context(), viewID, s.engine)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.logger.Info("view opened", "view_id", viewID)
	}
	v := s.viewFromDomain(state)
	v.Content = resolved
	s.writeJSON(w, status, v)
}

// GetView handles GET /views/{viewID}.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "viewID"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.viewFromDomain(state))
}

// DeleteView handles DELETE /views/{viewID}: the page was left, the view is discarded.
func (s *Server) DeleteView(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")
	if err := s.sessions.Delete(r.Context(), viewID); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.streams.Close(viewID)
	s.logger.Info("view discarded", "view_id", viewID)
	w.WriteHeader(http.StatusNoContent)
}

// SendSignal handles POST /views/{viewID}/signals.
func (s *Server) SendSignal(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")

	var sig domain.Signal
	if err := json.NewDecoder(r.Body).Decode(&sig); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var out domain.Outcome
	before, after, err := s.sessions.Update(r.Context(), viewID, func(ctx context.Context, state *domain.State) error {
		var err error
		out, err = s.engine.Apply(ctx, state, sig)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSignal) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeStoreError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveSignal(sig.Type)
	}

	s.broadcast(before, after)

	revealed := out.Revealed
	if revealed == nil {
		revealed = []string{}
	}
	s.writeJSON(w, http.StatusOK, SignalResponse{Revealed: revealed, View: s.viewFromDomain(after)})
}

// EvaluateGate handles POST /gate.
func (s *Server) EvaluateGate(w http.ResponseWriter, r *http.Request) {
	var body GateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, GateResponse{
		Decision: gate.EvaluateAnalyze(body.Text, body.User),
		Features: gate.FeaturesFor(body.User),
	})
}

// SubscribeEvents handles GET /views/{viewID}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "viewID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}
	if _, err := s.sessions.Load(r.Context(), viewID); err != nil {
		s.writeStoreError(w, err)
		return
	}

	var watch []string
	if q := r.URL.Query().Get("watch"); q != "" {
		watch = strings.Split(q, ",")
	}

	ch, cancel := s.streams.Subscribe(viewID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: subscribed", "view_id", viewID)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				fmt.Fprintf(w, "event: closed\ndata: %s\n\n", viewID)
				flusher.Flush()
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matchesWatch reports whether a serialized diff touches any watched field.
func matchesWatch(msg string, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch strings.TrimSpace(field) {
		case "revealed":
			if diff.Revealed != nil {
				return true
			}
		case "panel":
			if diff.PanelSuppressed != nil {
				return true
			}
		case "pending":
			if diff.Pending != nil {
				return true
			}
		}
	}
	return false
}

// Run fires due cascade reveals of idle views until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Warn("cascade sweep failed", "err", err)
			}
		}
	}
}

// Sweep fires the due cascade reveals of every live view once.
// Only views with a due cascade step are written back. That save refreshes the view's TTL
// like any other update; views with nothing due keep their expiry.
func (s *Server) Sweep(ctx context.Context) error {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ActiveViews.Set(float64(len(ids)))
	}

	now := s.engine.Now()
	var errs []error
	for _, id := range ids {
		state, err := s.sessions.Store().Load(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrViewNotFound) {
				errs = append(errs, err)
			}
			continue
		}
		if due, ok := s.engine.NextDue(state); !ok || due.After(now) {
			continue
		}

		before, after, err := s.sessions.Update(ctx, id, func(ctx context.Context, state *domain.State) error {
			s.engine.FireDue(ctx, state)
			return nil
		})
		if err != nil {
			if !errors.Is(err, domain.ErrViewNotFound) {
				errs = append(errs, err)
			}
			continue
		}
		s.broadcast(before, after)
	}
	return errors.Join(errs...)
}

func (s *Server) broadcast(before, after *domain.State) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to encode diff", "view_id", after.ViewID, "err", err)
		return
	}
	s.streams.Broadcast(after.ViewID, string(data))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrViewNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

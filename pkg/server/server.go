package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/metrics"
	"github.com/vango-dev/loom/pkg/protocol"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/sched"
)

//go:embed client.js
var clientJS []byte

// Server serves one document to any number of websocket clients.
type Server struct {
	config   *Config
	loop     *sched.Loop
	doc      *dom.Document
	session  *fiber.Session
	renderer *render.Renderer
	recorder *metrics.Recorder
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
	router   chi.Router
	logger   *slog.Logger

	// Loop-owned.
	seq uint64

	mu      sync.RWMutex
	clients map[string]*client

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder counts connections, frames and events on r.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithGatherer serves g at Config.MetricsPath.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a server for doc. session must render into doc and be
// scheduled on loop. New registers a commit hook on session, so it must be
// called before the first commit a client should see.
func New(config *Config, loop *sched.Loop, doc *dom.Document, session *fiber.Session, opts ...Option) *Server {
	config = config.withDefaults()
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   config,
		loop:     loop,
		doc:      doc,
		session:  session,
		renderer: render.NewRenderer(render.RendererConfig{NodeIDs: true}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:  logger.With("component", "server"),
		clients: make(map[string]*client),
	}
	for _, opt := range opts {
		opt(s)
	}

	session.OnCommit(s.broadcast)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/client.js", s.handleClientJS)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler with all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Snapshot renders the committed markup of the mount's children.
func (s *Server) Snapshot(ctx context.Context) (string, error) {
	var (
		html string
		err  error
	)
	if doErr := s.loop.Do(ctx, func() {
		html, err = s.renderer.RenderChildren(s.doc.Root)
	}); doErr != nil {
		return "", doErr
	}
	return html, err
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully and
// disconnects every client.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	s.closeClients()
	return err
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var (
		buf bytes.Buffer
		err error
	)
	page := render.PageData{
		Mount:        s.doc.Root,
		Title:        s.config.Title,
		ClientScript: "/client.js",
		SocketPath:   "/ws",
	}
	if doErr := s.loop.Do(r.Context(), func() {
		err = s.renderer.RenderPage(&buf, page)
	}); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleClientJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(clientJS)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	html, err := s.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

type health struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := health{Status: "ok", Clients: s.ClientCount()}
	var engineErr error
	if err := s.loop.Do(r.Context(), func() { engineErr = s.session.Err() }); err != nil {
		h.Status = "unavailable"
		h.Error = err.Error()
	} else if engineErr != nil {
		h.Status = "degraded"
		h.Error = engineErr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if h.Status == "unavailable" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(h)
}

// broadcast runs on the loop after every commit.
func (s *Server) broadcast(rep fiber.CommitReport) {
	ops := liveOps(s.doc.TakeOps())

	s.mu.RLock()
	targets := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	// Clients that connect later start from a Reset frame, so batches
	// nobody receives are dropped without using a sequence number.
	if len(ops) == 0 || len(targets) == 0 {
		return
	}
	s.seq++
	frame := protocol.NewFrame(protocol.FrameMutations, protocol.EncodeMutations(&protocol.Mutations{
		Seq: s.seq,
		Ops: ops,
	})).Encode()

	for _, c := range targets {
		if err := c.enqueue(frame); err != nil {
			c.logger.Warn("dropping slow client", "error", err, "seq", s.seq)
			c.close()
		}
	}
	s.logger.Debug("mutations broadcast", "seq", s.seq, "ops", len(ops), "clients", len(targets), "pass", rep.Pass)
}

// liveOps drops the ops of nodes that were created for a discarded pass.
// Such nodes were never attached; clients never need to hear of them.
func liveOps(ops []dom.Op) []dom.Op {
	released := map[int64]bool{}
	for _, op := range ops {
		if op.Kind == dom.OpRelease {
			released[op.Node] = true
		}
	}
	if len(released) == 0 {
		return ops
	}
	out := ops[:0]
	for _, op := range ops {
		if released[op.Node] || op.Kind == dom.OpRelease {
			continue
		}
		out = append(out, op)
	}
	return out
}

func (s *Server) register(c *client) {
	select {
	case <-c.done:
		return
	default:
	}
	s.mu.Lock()
	s.clients[c.id] = c
	n := len(s.clients)
	s.mu.Unlock()
	if s.recorder != nil {
		s.recorder.ClientConnected()
	}
	c.logger.Info("client connected", "clients", n)
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	n := len(s.clients)
	s.mu.Unlock()
	if !ok {
		return
	}
	if s.recorder != nil {
		s.recorder.ClientDisconnected()
	}
	c.logger.Info("client disconnected", "clients", n)
}

func (s *Server) closeClients() {
	s.mu.RLock()
	all := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		all = append(all, c)
	}
	s.mu.RUnlock()
	for _, c := range all {
		c.close()
	}
}

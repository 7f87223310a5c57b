package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/sched"
)

// Publisher captures committed markup on the loop and writes it to a
// Store from its own goroutine.
type Publisher struct {
	store    Store
	loop     *sched.Loop
	doc      *dom.Document
	renderer *render.Renderer
	key      string
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending *Snapshot
	wake    chan struct{}
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithKey sets the key snapshots are stored under. Default: "latest".
func WithKey(key string) PublisherOption {
	return func(p *Publisher) {
		p.key = key
	}
}

// WithPutTimeout bounds each Put. Default: 5 seconds.
func WithPutTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.timeout = d
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = l
	}
}

// NewPublisher creates a publisher for doc's mount.
func NewPublisher(store Store, loop *sched.Loop, doc *dom.Document, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:    store,
		loop:     loop,
		doc:      doc,
		renderer: render.NewRenderer(render.RendererConfig{}),
		key:      "latest",
		timeout:  5 * time.Second,
		logger:   slog.Default(),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "snapshot", "key", p.key)
	return p
}

// Attach captures a snapshot after every commit of session. session must
// be scheduled on the publisher's loop.
func (p *Publisher) Attach(session *fiber.Session) {
	session.OnCommit(func(rep fiber.CommitReport) {
		snap, err := p.capture(rep.Pass)
		if err != nil {
			p.logger.Error("snapshot capture failed", "error", err, "pass", rep.Pass)
			return
		}
		p.offer(snap)
	})
}

// Capture renders a snapshot of the current committed tree. It runs the
// render on the loop and must not be called from the loop goroutine.
func (p *Publisher) Capture(ctx context.Context) (*Snapshot, error) {
	var (
		snap *Snapshot
		err  error
	)
	if doErr := p.loop.Do(ctx, func() {
		snap, err = p.capture(0)
	}); doErr != nil {
		return nil, doErr
	}
	return snap, err
}

func (p *Publisher) capture(pass uint64) (*Snapshot, error) {
	html, err := p.renderer.RenderChildren(p.doc.Root)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Key:       p.key,
		Pass:      pass,
		HTML:      html,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// offer replaces any snapshot still waiting to be written.
func (p *Publisher) offer(s *Snapshot) {
	p.mu.Lock()
	p.pending = s
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Publisher) take() *Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.pending
	p.pending = nil
	return s
}

// Run writes offered snapshots until ctx is canceled. A snapshot pending
// at cancellation is flushed with a fresh timeout before Run returns.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-p.wake:
			if s := p.take(); s != nil {
				p.put(ctx, s)
			}
		case <-ctx.Done():
			if s := p.take(); s != nil {
				p.put(context.Background(), s)
			}
			return nil
		}
	}
}

func (p *Publisher) put(ctx context.Context, s *Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	start := time.Now()
	if err := p.store.Put(ctx, s); err != nil {
		p.logger.Error("snapshot write failed", "error", err, "pass", s.Pass)
		return
	}
	p.logger.Debug("snapshot written", "pass", s.Pass, "bytes", len(s.HTML), "took", time.Since(start))
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/metrics"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/server"
	"github.com/vango-dev/loom/pkg/snapshot"
	"github.com/vango-dev/loom/pkg/vdom"
)

func serveCmd(opts *options) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve [app]",
		Short: "Serve a demo component over WebSocket",
		Long: `Serve a demo component to browsers.

Every connected browser mirrors one shared document. Events from any
browser run on the scheduler loop; each commit is broadcast to all
browsers as a mutation frame.

Examples:
  loom serve
  loom serve counter --port=8080
  loom serve todo -c loom.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			name := "todo"
			if len(args) == 1 {
				name = args[0]
			}
			app, ok := demo.Lookup(name)
			if !ok {
				return unknownApp(name)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, name, app)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, name string, app vdom.Component) error {
	log := logger(cmd, cfg)

	loop := sched.NewLoop(sched.LoopConfig{
		SliceBudget:   cfg.SliceBudget(),
		FrameInterval: cfg.FrameInterval(),
		QueueSize:     cfg.Scheduler.QueueSize,
		Logger:        log,
	})
	doc := dom.New()

	sessionOpts := []fiber.Option{fiber.WithLogger(log)}
	var serverOpts []server.Option
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec := metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(reg),
		)
		sessionOpts = append(sessionOpts, fiber.WithObserver(rec))
		serverOpts = append(serverOpts, server.WithRecorder(rec), server.WithGatherer(reg))
	}
	session := fiber.New(doc, loop, sessionOpts...)

	srv := server.New(&server.Config{
		Address:      cfg.Address(),
		Title:        cfg.Server.Title,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		PingInterval: cfg.PingInterval(),
		MetricsPath:  cfg.Metrics.Path,
		Logger:       log,
	}, loop, doc, session, serverOpts...)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher *snapshot.Publisher
	if store != nil {
		publisher = snapshot.NewPublisher(store, loop, doc,
			snapshot.WithKey(cfg.Snapshot.Key),
			snapshot.WithLogger(log),
		)
		publisher.Attach(session)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loop.Run(ctx)
		return nil
	})

	var renderErr error
	if err := loop.Do(ctx, func() {
		renderErr = session.Render(vdom.C(app), doc.Root)
	}); err != nil || renderErr != nil {
		cancel()
		g.Wait()
		if err != nil {
			return err
		}
		return renderErr
	}

	g.Go(func() error { return srv.Run(ctx) })
	if publisher != nil {
		g.Go(func() error { return publisher.Run(ctx) })
	}

	log.Info("serving", "app", name, "address", cfg.Address(), "snapshot_store", cfg.Snapshot.Store)
	return g.Wait()
}

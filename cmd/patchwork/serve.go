package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/pkg/component"
	"github.com/vango-dev/patchwork/pkg/livesync"
	"github.com/vango-dev/patchwork/pkg/memdom"
	"github.com/vango-dev/patchwork/pkg/reactive"
	"github.com/vango-dev/patchwork/pkg/snapshot"
	"github.com/vango-dev/patchwork/pkg/telemetry"
	"github.com/vango-dev/patchwork/pkg/vdom"
)

// snapshotKey is the key the served document is persisted under.
const snapshotKey = "serve"

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		state   string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live document over WebSocket",
		Long: `Mount a board component on an in-memory document and stream its
patches to browsers over WebSocket.

The board shows the keys of a JSON state file. When the file changes
on disk, its values are applied to the board and the resulting patch
is pushed to every client. Values can also be set over HTTP:

  curl -X PUT -d 42 http://localhost:7070/state/count

The document is captured to the configured snapshot store on shutdown
and hydrated from it on the next start.

Examples:
  patchwork serve
  patchwork serve --state ./state.json --metrics
  patchwork serve --port=8080 --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if state != "" {
				cfg.Serve.State = state
			}
			if metrics {
				cfg.Serve.Metrics = true
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from patchwork.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from patchwork.json)")
	cmd.Flags().StringVarP(&state, "state", "s", "", "JSON state file to watch")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Serve Prometheus metrics on /metrics")

	return cmd
}

func runServe(cfg *config.Config) error {
	logger := newLogger(cfg)

	initial := map[string]any{}
	if path := cfg.StatePath(); path != "" {
		s, err := loadState(path)
		if err != nil {
			return err
		}
		initial = s
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Observers
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observers := []telemetry.Observer{
		telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Telemetry.Namespace),
			telemetry.WithRegistry(registry),
		),
	}
	if cfg.Telemetry.Tracing {
		observers = append(observers, telemetry.NewTracer())
	}

	doc := memdom.NewDocument()
	hubCfg := livesync.Config{
		HeartbeatInterval: cfg.HeartbeatInterval(),
		History:           cfg.Serve.History,
		Logger:            logger,
	}
	if cfg.Serve.Metrics {
		hubCfg.Gatherer = registry
	}
	hub := livesync.NewHub(doc, hubCfg)
	obs := telemetry.Tee(append(observers, hub)...)

	rc := cfg.ReactiveConfig()
	rc.Logger = logger
	rc.Observer = obs
	rt := reactive.NewRuntime(rc)
	app := component.NewApp(component.Options{Backend: doc, Runtime: rt, PatchObserver: obs})

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go rt.Loop().Run(loopCtx)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root *component.Instance
	err = rt.Loop().Do(ctx, func() {
		var target vdom.Node
		if snap, err := store.Get(ctx, snapshotKey); err == nil {
			n, err := snapshot.Restore(doc, snap)
			if err != nil {
				logger.Warn("discarding snapshot", "key", snapshotKey, "error", err)
			} else {
				target = n
				logger.Info("hydrating from snapshot", "key", snapshotKey, "created", snap.Created)
			}
		} else if !stderrors.Is(err, snapshot.ErrNotFound) {
			logger.Warn("read snapshot", "key", snapshotKey, "error", err)
		}
		root = app.Mount(boardDef(initial), nil, target)
		hub.Attach(root)
	})
	if err != nil {
		return err
	}

	if path := cfg.StatePath(); path != "" {
		go func() {
			err := watchState(ctx, path, logger, func(state map[string]any) error {
				return hub.Apply(ctx, func(root *component.Instance) {
					for k, v := range state {
						root.Set(k, v)
					}
				})
			})
			if err != nil {
				logger.Error("watch state", "path", path, "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.ServeAddress(),
		Handler:           hub.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printBanner()
	success("Serving on http://%s", cfg.ServeAddress())
	if cfg.Serve.Metrics {
		info("Metrics on http://%s/metrics", cfg.ServeAddress())
	}
	if path := cfg.StatePath(); path != "" {
		info("Watching %s", path)
	}
	fmt.Println()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		fmt.Println("\n\n  Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}

	return persist(shutdownCtx, rt, root, store, logger)
}

// persist captures the root's markup on the loop and stores it.
func persist(ctx context.Context, rt *reactive.Runtime, root *component.Instance, store snapshot.Store, logger *slog.Logger) error {
	var snap snapshot.Snapshot
	err := rt.Loop().Do(ctx, func() {
		if n, ok := root.Elm().(*memdom.Node); ok {
			snap = snapshot.Capture(snapshotKey, n)
		}
	})
	if err != nil || snap.Key == "" {
		return err
	}
	res, err := snapshot.Check(ctx, store, snap)
	if err != nil {
		return err
	}
	logger.Info("snapshot saved", "key", snapshotKey, "status", res.Status, "fingerprint", fmt.Sprintf("%016x", snap.Fingerprint))
	return nil
}

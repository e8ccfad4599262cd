// Package main runs the interactive Civica client.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/client/api"
	"github.com/atinyakov/civica/internal/client/auth"
	"github.com/atinyakov/civica/internal/client/gateway"
	"github.com/atinyakov/civica/internal/client/notify"
	"github.com/atinyakov/civica/internal/client/optimistic"
	"github.com/atinyakov/civica/internal/client/storage"
	"github.com/atinyakov/civica/internal/config"
	"github.com/atinyakov/civica/internal/logger"
	"github.com/atinyakov/civica/internal/metrics"
)

var (
	version   string
	buildDate string
)

// newShell wires the client core around backend and the given HTTP client.
// Gateway metrics go to rec.
func newShell(baseURL string, backend storage.Backend, client *http.Client, rec metrics.Recorder, log *zap.Logger, out io.Writer) *shell {
	store := storage.NewStore(backend, log)
	notifier := notify.Multi{notify.NewConsole(out), notify.Log{L: log}}

	gw := gateway.New(baseURL, store,
		gateway.WithHTTPClient(client),
		gateway.WithNotifier(notifier),
		gateway.WithMetrics(rec),
		gateway.WithLogger(log),
	)
	c := api.New(gw)
	session := auth.New(store, c, notifier, log)

	gw.OnUnauthorized(func() {
		session.Expire()
		fmt.Fprintln(out, "Session expired. Please log in again.")
	})

	return &shell{
		session: session,
		api:     c,
		voter:   optimistic.NewVoter(c, session, notifier),
		liker:   optimistic.NewLiker(c, session, notifier),
		out:     out,
	}
}

// openBackend picks durable session storage: PostgreSQL when a DSN is
// configured, a JSON file otherwise.
func openBackend(options *config.ClientOptions) (storage.Backend, error) {
	if options.StorageDSN != "" {
		db, err := storage.InitPostgres(options.StorageDSN)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresBackend(db, cmp.Or(os.Getenv("USER"), "default")), nil
	}
	return storage.NewFileBackend(cmp.Or(options.StoragePath, storage.DefaultFile))
}

func main() {
	options, err := config.ParseClient(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if options.ShowVersion {
		fmt.Printf("Civica Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	l := logger.New()
	defer func() { _ = l.Log.Sync() }()
	if err := l.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	backend, err := openBackend(options)
	if err != nil {
		l.Log.Fatal("cannot open session storage", zap.Error(err))
	}

	client, err := storage.NewHTTPClient(options.CAFile, gateway.DefaultTimeout)
	if err != nil {
		l.Log.Fatal("cannot build HTTP client", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	if options.MetricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(options.MetricsAddr, metrics.Handler(reg)); err != nil {
				l.Log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := newShell(options.APIURL, backend, client, rec, l.Log, os.Stdout)
	go sh.session.Init(ctx)
	sh.run(ctx, os.Stdin)
}

// Package main runs the reference backend: accounts, sessions, forum votes
// and short-form likes over HTTP.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/config"
	"github.com/atinyakov/civica/internal/db"
	"github.com/atinyakov/civica/internal/logger"
	"github.com/atinyakov/civica/internal/metrics"
	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/repository"
	"github.com/atinyakov/civica/internal/server/handler/http"
	"github.com/atinyakov/civica/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	sessionTTL      = 30 * 24 * time.Hour
	cleanupInterval = time.Hour
)

func main() {
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Accounts live in PostgreSQL when a DSN is given, in memory otherwise.
	var authRepo service.AuthRepository
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()
		db.StartSessionCleaner(ctx, postgresDB, cleanupInterval, sessionTTL, zapLogger)
		authRepo = repository.NewPostgresAuthRepository(postgresDB)
	} else {
		zapLogger.Warn("no database configured, accounts are kept in memory")
		authRepo = repository.NewMemoryAuthRepository()
	}

	contentRepo := repository.NewMemoryContentRepository()
	seed(contentRepo)

	authService := service.NewAuthService(authRepo)
	contentService := service.NewContentService(contentRepo)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := http.NewRouter(
		&http.AuthHandler{AuthService: authService, Log: zapLogger},
		&http.ContentHandler{ContentService: contentService, Log: zapLogger},
		authService,
		metrics.NewCollector(reg),
		metrics.Handler(reg),
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if options.TLS() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

// seed loads demo content so a fresh backend has something to vote on.
func seed(repo *repository.MemoryContentRepository) {
	now := time.Now()
	staff := models.Author{ID: "staff", Name: "Civica Team", LearningLevel: models.Teacher}

	repo.AddPost(models.ForumPost{
		ID:        "welcome",
		Title:     "Welcome to the civic forum",
		Content:   "Introduce yourself and tell us which local issue matters most to you.",
		Category:  "general",
		Author:    staff,
		Pinned:    true,
		CreatedAt: now,
	})
	repo.AddReply("welcome", models.ForumReply{
		ID:        "welcome-1",
		Content:   "Public transport in my district.",
		Author:    models.Author{ID: "demo", Name: "Demo Learner", LearningLevel: models.Beginner},
		CreatedAt: now,
	})
	repo.AddPost(models.ForumPost{
		ID:        "budget",
		Title:     "How is the city budget decided?",
		Content:   "Share what you know about participatory budgeting.",
		Category:  "discussion",
		Tags:      []string{"budget", "local-government"},
		Author:    staff,
		CreatedAt: now,
	})
	repo.AddShortForm(models.ShortForm{
		ID:       "separation-of-powers",
		Title:    "Separation of powers in 60 seconds",
		VideoURL: "https://example.org/videos/separation-of-powers.mp4",
		Category: "government",
		Status:   "approved",
	})
}

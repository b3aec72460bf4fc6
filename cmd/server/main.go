package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zedmor/mafia-token-engine/internal/config"
	"github.com/zedmor/mafia-token-engine/internal/observability"
	"github.com/zedmor/mafia-token-engine/internal/realtime"
	"github.com/zedmor/mafia-token-engine/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	seed := flag.Int("seed", cfg.Seed, "role arrangement seed (0..2519)")
	listen := flag.String("listen", cfg.ListenAddr, "framed transport listen address")
	httpAddr := flag.String("http", cfg.HTTPAddr, "admin HTTP listen address")
	logDir := flag.String("log-dir", cfg.LogDir, "root for training artifacts (empty disables)")
	flag.Parse()
	cfg.Seed = *seed
	cfg.ListenAddr = *listen
	cfg.HTTPAddr = *httpAddr
	cfg.LogDir = *logDir
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.SetupLogger()
	if err != nil {
		log.Fatalf("cannot init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := observability.SetupTracerProvider(ctx, "mafia-token-engine", cfg.TraceStdout, logger)
	if err != nil {
		logger.Fatal("cannot init tracer", zap.Error(err))
	}
	defer tp.Shutdown(ctx)

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer.(*prometheus.Registry))

	turnServer := server.New(logger, metrics)
	transport := server.NewTransport(server.TransportConfig{
		Addr:   cfg.ListenAddr,
		Seed:   cfg.Seed,
		LogDir: cfg.LogDir,
	}, turnServer, logger, metrics)
	if err := transport.Listen(); err != nil {
		logger.Fatal("cannot bind transport", zap.Error(err))
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}}))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/ws/observe", realtime.NewObserver(turnServer, logger, metrics))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		logger.Info("admin server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("admin server error", zap.Error(err))
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- transport.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			logger.Error("transport error", zap.Error(err))
			exitCode = 1
		}
	case <-quit:
		logger.Info("shutting down")
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	return exitCode
}

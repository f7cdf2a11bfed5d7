package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xtding233/rank-ladder/internal/config"
	"github.com/xtding233/rank-ladder/internal/logger"
	"github.com/xtding233/rank-ladder/internal/rpc"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfgDir := envOr("LADDER_CONFIG_DIR", "configs")
	logCfg, err := logger.LoadConfig(filepath.Join(cfgDir, "logging.yaml"))
	if err != nil {
		return err
	}
	log, closer, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(log)

	loader := config.NewLoader(cfgDir)
	loader.Log = log
	watcher := config.WatchLoader(loader, 2*time.Second, log)
	watcher.Start()
	defer watcher.Stop()

	svc := &rpc.Service{
		Source:          loader,
		Log:             log,
		MaxTrials:       envInt("MAX_TRIALS", rpc.DefaultMaxTrials),
		SimulateTimeout: envDuration("SIMULATE_TIMEOUT", 30*time.Second),
	}

	grpcAddr := envOr("GRPC_ADDR", ":9090")
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return err
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(rpc.UnaryLogging(log)))
	rpc.RegisterLadderServer(gs, rpc.NewServer(svc))

	httpAddr := envOr("HTTP_ADDR", ":8080")
	hs := &http.Server{
		Addr:              httpAddr,
		Handler:           newMux(svc, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("grpc listening", "addr", grpcAddr)
		return gs.Serve(lis)
	})
	g.Go(func() error {
		log.Info("http listening", "addr", httpAddr)
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		gs.GracefulStop()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}

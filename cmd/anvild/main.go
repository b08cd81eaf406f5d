package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voxelforge/anvil/internal/server/api"
	"github.com/voxelforge/anvil/pkg/anvil"
)

func main() {
	// Parse command line flags
	addr := flag.String("addr", ":3000", "HTTP service address")
	world := flag.String("world", "", "Region folder to serve")
	maxOpen := flag.Int("max-open", anvil.DefaultMaxOpenRegions, "Maximum cached open region files")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *world == "" {
		logger.Error("region folder required, pass -world")
		os.Exit(1)
	}

	chunks := anvil.NewProviderCache(*world, *maxOpen)
	defer chunks.Close()

	server := api.New(chunks, logger)

	// Create router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	server.Register(r)

	logger.Info("anvild listening", "addr", *addr, "world", *world)
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

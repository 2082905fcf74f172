package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/praxisllmlab/fabsearch/internal/cache"
	"github.com/praxisllmlab/fabsearch/internal/config"
	"github.com/praxisllmlab/fabsearch/internal/health"
	"github.com/praxisllmlab/fabsearch/internal/metrics"
	"github.com/praxisllmlab/fabsearch/internal/provider"
	"github.com/praxisllmlab/fabsearch/internal/search"
	"github.com/praxisllmlab/fabsearch/internal/server"
	"github.com/praxisllmlab/fabsearch/internal/suggest"
)

func main() {
	configPath := flag.String("config", "", "path to fabsearch config YAML")
	flag.Parse()

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
		log.Printf("loaded config from %s", *configPath)
	} else {
		cfg = config.Default()
		log.Println("no config file given, using defaults")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := buildRegistry(cfg)
	log.Printf("registered providers: %v", registry.IDs())

	cacheBackend := buildCache(ctx, cfg)

	tracker := health.NewTracker(cfg.Search.AllowedFails, cfg.Search.Cooldown())
	store := suggest.NewStore()

	svc := search.NewService(registry, cacheBackend, tracker, store, search.Settings{
		Concurrency:     cfg.Search.Concurrency,
		CacheTTL:        cfg.Cache.TTL(),
		ProviderTimeout: cfg.Search.ProviderTimeout(),
	})

	srv := server.NewServer(server.Config{
		Search:   svc,
		Registry: registry,
		Tracker:  tracker,
		Store:    store,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go metrics.ListenAndServe(ctx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		cancel()
	}()

	log.Printf("fabsearch listening on %s", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// buildRegistry assembles the provider set from config. Providers disabled
// in config are left out entirely.
func buildRegistry(cfg *config.Config) *provider.Registry {
	opts := make(map[string]provider.Options, len(cfg.Providers))
	for id, pc := range cfg.Providers {
		opts[id] = provider.Options{APIKey: pc.APIKey, APIBase: pc.APIBase}
	}

	full := provider.Defaults(opts)
	registry := provider.NewRegistry()
	for _, p := range full.All() {
		id := p.Descriptor().ID
		if pc, ok := cfg.Providers[id]; ok && !pc.IsEnabled() {
			continue
		}
		registry.Register(p)
	}
	return registry
}

func buildCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if !cfg.Cache.IsEnabled() {
		log.Println("response cache disabled")
		return cache.Disabled()
	}
	backend, err := cache.NewFromConfig(ctx, cfg.Cache.Type, cfg.Cache.Addrs, cfg.Cache.Password, cfg.Cache.MaxEntries)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	return backend
}

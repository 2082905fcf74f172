// Package metrics runs the dedicated Prometheus listener.
package metrics

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ListenAndServe starts a dedicated HTTP server for Prometheus metrics.
// It reads the METRICS_PORT env var (default ":9090"). Setting METRICS_PORT
// to the empty string disables the listener. The server shuts down
// gracefully when ctx is cancelled.
func ListenAndServe(ctx context.Context) {
	port := Addr()
	if port == "" {
		log.Println("METRICS_PORT is empty, metrics server disabled")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("metrics server shutdown error: %v", err)
		}
	}()

	log.Printf("metrics server listening on %s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("metrics server error: %v", err)
	}
}

// Addr returns the metrics listen address from the environment, or the
// default. An explicitly empty METRICS_PORT returns "".
func Addr() string {
	port, ok := os.LookupEnv("METRICS_PORT")
	if !ok {
		return ":9090"
	}
	if port == "" {
		return ""
	}
	if port[0] != ':' {
		return ":" + port
	}
	return port
}

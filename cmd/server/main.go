/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the ledger engine server: configuration,
  SQLite store, service wiring, HTTP router, graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (and optional YAML config file)
  2. Open and migrate the SQLite store
  3. Wire the services and HTTP handler
  4. Start the server
  5. On SIGINT/SIGTERM, drain requests and close the store

COMMAND-LINE FLAGS:
  -addr    Listen address (default: :8080)
  -db      SQLite database path (default: wallet.db, ":memory:" works)
  -config  Optional YAML config file; flags override its values

EXAMPLES:
  ./server -db=./data/wallet.db
  ./server -config=./wallet.yaml -addr=:3000
*/
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

	"github.com/walletd/ledger-engine/api"
	"github.com/walletd/ledger-engine/config"
	"github.com/walletd/ledger-engine/store/sqlite"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}

	ledgerCfg, err := cfg.Ledger()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := sqlite.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, ledgerCfg)
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Printf("Ledger engine listening on %s (db: %s)", cfg.Addr, cfg.Database)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting connections, drain for 30s.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

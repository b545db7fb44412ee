/*
main.go - HTTP server entry point

PURPOSE:
  Initializes and starts the timesheet engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load the overtime rules (defaults unless -rules is given)
  3. Open the store backend
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -store   Backend: sqlite, badger or memory (default: sqlite)
  -db      Database file or directory (default: under the XDG data home)
           Use ":memory:" for an in-memory SQLite database
  -rules   JSON rules file (see factory/rules.go for the schema)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  ./server -db="./data/timesheet.db"
  ./server -store=badger -db="./data/badger"
  ./server -db=":memory:" -rules=./rules.json

SEE ALSO:
  - api/server.go: Router configuration
  - store/open.go: Backend selection
*/
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

	"github.com/warp/timesheet-engine/api"
	"github.com/warp/timesheet-engine/factory"
	"github.com/warp/timesheet-engine/store"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	backend := flag.String("store", store.SQLite, "Store backend: sqlite, badger or memory")
	dbPath := flag.String("db", "", "Database path (default under the XDG data home)")
	rulesPath := flag.String("rules", "", "JSON rules file")
	flag.Parse()

	rules, err := factory.NewRulesFactory().LoadFile(*rulesPath)
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}

	// Initialize store
	st, err := store.Open(*backend, *dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	handler := api.NewHandler(st, rules)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (store: %s)", *port, *backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

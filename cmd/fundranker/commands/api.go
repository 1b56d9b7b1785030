package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundranker/internal/api"
	"github.com/wonny/fundranker/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health                         - Health check
  GET  /api/rankings/{category}        - Latest ranking for a category
  GET  /api/funds/{schemeCode}/metrics - Metrics for a single fund
  GET  /api/cache/stats                - NAV cache statistics
  POST /api/cache/clear                - Drop cached NAV series
  POST /api/pipeline/run               - Trigger a pipeline run
  GET  /api/runs                       - Recent run history

Example:
  go run ./cmd/fundranker api
  go run ./cmd/fundranker api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fund Ranker API Server ===")

	// 1. Build shared components
	comps, err := initComponents()
	if err != nil {
		return fmt.Errorf("init components: %w", err)
	}
	defer comps.close()

	// Override port if flag is set
	if apiPort != "" {
		comps.cfg.Port = apiPort
	}

	log := comps.log
	log.WithFields(map[string]interface{}{
		"port": comps.cfg.Port,
		"env":  comps.cfg.Env,
	}).Info("Initializing API server")

	// 2. Open run history
	history, err := comps.newHistory()
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer history.Close()

	// 3. Create handlers
	healthHandler := handlers.NewHealthHandler(comps.db, comps.redis, log)
	rankingsHandler := handlers.NewRankingsHandler(comps.rankingRepo(), comps.rankingCache(), "", log)
	fundsHandler := handlers.NewFundsHandler(comps.fetcher, comps.engine, comps.builder, comps.rankingCache(), log)
	cacheHandler := handlers.NewCacheHandler(comps.store, log)
	pipelineHandler := handlers.NewPipelineHandler(comps.newOrchestrator(history), history, comps.runTemplate(), log)

	// 4. Create router
	router := api.NewRouter(healthHandler, rankingsHandler, fundsHandler, cacheHandler, pipelineHandler, log)

	// 5. Create server
	server := api.New(comps.cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", comps.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/rankings/{category}")
	fmt.Println("  GET  /api/funds/{schemeCode}/metrics")
	fmt.Println("  GET  /api/cache/stats")
	fmt.Println("  POST /api/cache/clear")
	fmt.Println("  POST /api/pipeline/run")
	fmt.Println("  GET  /api/runs")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

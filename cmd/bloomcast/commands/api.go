package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petalworks/bloomcast/backend/internal/api"
	"github.com/petalworks/bloomcast/backend/internal/api/handlers"
	"github.com/petalworks/bloomcast/backend/internal/narrate"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                       - Health check
  GET  /api/forecast/revenue         - Per-flower revenue forecast
  GET  /api/forecast/profit          - Per-flower profit forecast
  GET  /api/forecast/top-revenue     - Highest-revenue flowers
  GET  /api/forecast/top-profit      - Highest-profit flowers
  GET  /api/forecast/summary         - All metrics with rankings
  GET  /api/products                 - Catalog
  GET  /api/products/{name}/history  - Sales history of one flower
  POST /api/quantity/recommend       - Quantity advice with projected profit
  POST /api/chat                     - Narrated answer to a question
  GET  /api/chat/ws                  - Chat over websocket

Example:
  go run ./cmd/bloomcast api
  go run ./cmd/bloomcast api --port 8086`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.close()

	if apiPort != "" {
		p.cfg.Port = apiPort
	}

	log := p.log

	forecastHandler := handlers.NewForecastHandler(p.service, p.ranker, p.cfg, log)
	productsHandler := handlers.NewProductsHandler(p.catalog, p.store, log)
	quantityHandler := handlers.NewQuantityHandler(p.service, p.cfg, log)

	// Narration is optional; without an API key the chat routes are off
	var chatHandler *handlers.ChatHandler
	if p.cfg.Gemini.APIKey != "" {
		narrator, err := narrate.NewGemini(ctx, p.cfg, log)
		if err != nil {
			return fmt.Errorf("create narrator: %w", err)
		}
		defer narrator.Close()
		chatHandler = handlers.NewChatHandler(p.service, p.ranker, narrator, p.cfg, log)
	} else {
		log.Warn("GEMINI_API_KEY not set, chat endpoints disabled")
	}

	router := api.NewRouter(forecastHandler, productsHandler, quantityHandler, chatHandler, log)
	server := api.New(p.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", p.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/petalworks/bloomcast/backend/internal/api/handlers"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router. chatHandler may be
// nil when narration is not configured; its routes are then omitted.
func NewRouter(
	forecastHandler *handlers.ForecastHandler,
	productsHandler *handlers.ProductsHandler,
	quantityHandler *handlers.QuantityHandler,
	chatHandler *handlers.ChatHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Forecast endpoints
	api.HandleFunc("/forecast/revenue", forecastHandler.GetRevenue).Methods("GET")
	api.HandleFunc("/forecast/profit", forecastHandler.GetProfit).Methods("GET")
	api.HandleFunc("/forecast/top-revenue", forecastHandler.GetTopRevenue).Methods("GET")
	api.HandleFunc("/forecast/top-profit", forecastHandler.GetTopProfit).Methods("GET")
	api.HandleFunc("/forecast/summary", forecastHandler.GetSummary).Methods("GET")

	// Catalog and history endpoints
	api.HandleFunc("/products", productsHandler.GetProducts).Methods("GET")
	api.HandleFunc("/products/{name}/history", productsHandler.GetHistory).Methods("GET")

	// Quantity recommendation
	api.HandleFunc("/quantity/recommend", quantityHandler.Recommend).Methods("POST")

	// Chat endpoints
	if chatHandler != nil {
		api.HandleFunc("/chat", chatHandler.Chat).Methods("POST")
		api.HandleFunc("/chat/ws", chatHandler.ChatWS).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "bloomcast-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Copyright 2026 Pensio
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"pensio/platform/shared/logger"
)

// Pensio Calculation Engine - stateless pension mutation evaluation service

// Components
var (
	engineLogger          *logger.Logger
	metricsCollector      *MetricsCollector
	accrualRates          AccrualRateProvider
	evaluator             *Evaluator
	calculationAPIHandler *CalculationAPIHandler
	schemeRegistryClient  *SchemeRegistryClient
)

// Prometheus metrics
var (
	promCalculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pensio_engine_calculations_total",
			Help: "Total number of calculation requests processed by the engine",
		},
		[]string{"outcome"},
	)
	promCalculationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pensio_engine_calculation_duration_milliseconds",
			Help:    "Calculation request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 200, 500, 1000, 2000, 5000},
		},
	)
	promMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pensio_engine_mutations_total",
			Help: "Total number of mutations evaluated",
		},
		[]string{"type", "result"},
	)
	promMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pensio_engine_messages_total",
			Help: "Total number of calculation messages emitted",
		},
		[]string{"severity"},
	)
)

func init() {
	// Register Prometheus metrics
	prometheus.MustRegister(promCalculationsTotal)
	prometheus.MustRegister(promCalculationDuration)
	prometheus.MustRegister(promMutationsTotal)
	prometheus.MustRegister(promMessagesTotal)
}

// Run starts the calculation engine HTTP service.
func Run() {
	log.Println("Starting Pensio Calculation Engine...")

	// Optional .env for local development
	_ = godotenv.Load()

	// Initialize components
	initializeComponents()

	// Setup router
	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check
	r.HandleFunc("/health", healthHandler).Methods("GET")

	// Metrics endpoints: JSON aggregate plus native Prometheus format
	r.HandleFunc("/metrics", jsonMetricsHandler).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	// Main calculation endpoint
	r.HandleFunc("/calculation-requests", calculationAPIHandler.HandleCalculationRequest).Methods("POST")

	// Start server
	port := getEnv("PORT", "8080")
	handler := c.Handler(r)
	log.Printf("Pensio Calculation Engine listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func initializeComponents() {
	engineLogger = logger.New("calculation-engine")
	metricsCollector = NewMetricsCollector()

	// Accrual rate provider chain: static table -> scheme registry -> default
	if registryURL := os.Getenv("SCHEME_REGISTRY_URL"); registryURL != "" {
		timeout := DefaultSchemeRegistryTimeout
		if raw := os.Getenv("SCHEME_REGISTRY_TIMEOUT"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				log.Printf("Invalid SCHEME_REGISTRY_TIMEOUT %q, using default %s", raw, timeout)
			} else {
				timeout = parsed
			}
		}
		schemeRegistryClient = NewSchemeRegistryClient(registryURL, timeout, engineLogger)
		accrualRates = schemeRegistryClient
		log.Printf("Scheme registry configured at %s (timeout %s)", registryURL, timeout)
	}
	if path := os.Getenv("ACCRUAL_RATES_FILE"); path != "" {
		table, err := LoadStaticRateTable(path, accrualRates)
		if err != nil {
			log.Printf("Failed to load accrual rate table from %s: %v", path, err)
		} else {
			accrualRates = table
			log.Printf("Accrual rate table loaded from %s", path)
		}
	}

	evaluator = NewEvaluator(accrualRates, engineLogger, metricsCollector)
	calculationAPIHandler = NewCalculationAPIHandler(evaluator, metricsCollector, engineLogger)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	components := map[string]bool{
		"evaluator":         evaluator != nil,
		"metrics_collector": metricsCollector != nil,
	}
	if schemeRegistryClient != nil {
		components["scheme_registry"] = schemeRegistryClient.IsHealthy()
	}

	health := map[string]interface{}{
		"status":     "healthy",
		"service":    "pensio-calculation-engine",
		"version":    "1.0.0",
		"timestamp":  time.Now().UTC(),
		"components": components,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func jsonMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(metricsCollector.GetMetrics()); err != nil {
		log.Printf("Error encoding metrics: %v", err)
	}
}

func corsAllowedOrigins() []string {
	raw := getEnv("CORS_ALLOWED_ORIGINS", "*")
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

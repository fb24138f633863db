// Package health serves the health, status and metrics endpoints.
package health

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/speedrun-hq/speedrun-e2e/pkg/chainclient"
	"github.com/speedrun-hq/speedrun-e2e/pkg/circuitbreaker"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/metrics"
)

// Server represents a health check HTTP server
type Server struct {
	port            string
	chains          map[int]*chainclient.Client
	circuitBreakers map[int]*circuitbreaker.CircuitBreaker
	metricsAPIKey   string
	logger          logger.Logger
}

// NewServer creates a new health check server
func NewServer(port string, chains map[int]*chainclient.Client, circuitBreakers map[int]*circuitbreaker.CircuitBreaker, log logger.Logger) *Server {
	return &Server{
		port:            port,
		chains:          chains,
		circuitBreakers: circuitBreakers,
		metricsAPIKey:   os.Getenv("METRICS_API_KEY"),
		logger:          log,
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start starts the health check server. Blocks; run it on its own goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		for chainID, client := range s.chains {
			if client.Client == nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("Chain %d client not connected", chainID)))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]interface{})

		for chainID, client := range s.chains {
			circuitStatus := "closed"
			if cb, ok := s.circuitBreakers[chainID]; ok && cb.IsOpen() {
				circuitStatus = "open"
			}

			chainStatus := map[string]interface{}{
				"name":              client.Name,
				"rpc_url":           client.RPCURL,
				"initiator_address": client.InitiatorAddress.Hex(),
				"connected":         client.Client != nil,
				"circuit":           circuitStatus,
			}

			if client.Client != nil {
				if blockNumber, err := client.GetLatestBlockNumber(r.Context()); err == nil {
					chainStatus["latest_block"] = blockNumber
				}

				balances := make(map[string]interface{})
				for _, symbol := range []string{"USDC", "USDT"} {
					balance, err := client.TokenBalance(r.Context(), symbol, client.Sender())
					if err != nil {
						continue
					}
					balances[symbol] = balance.String()
					s.exportBalanceMetric(chainID, symbol, balance, client)
				}
				if len(balances) > 0 {
					chainStatus["token_balances"] = balances
				}
			}

			status[fmt.Sprintf("chain_%d", chainID)] = chainStatus
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			s.logger.Error("Failed to encode status JSON: %v", err)
		}
	})

	// Circuit breaker admin control endpoint
	mux.HandleFunc("/circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		chainIDStr := r.URL.Query().Get("chain")
		if chainIDStr == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Missing chain parameter"))
			return
		}

		chainID, err := strconv.Atoi(chainIDStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Invalid chain ID"))
			return
		}

		cb, ok := s.circuitBreakers[chainID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(fmt.Sprintf("No circuit breaker for chain %d", chainID)))
			return
		}

		cb.Reset()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fmt.Sprintf("Circuit breaker for chain %d reset", chainID)))
	})

	// Expose Prometheus metrics with API key authentication
	mux.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	s.logger.Info("Starting health and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, mux); err != nil {
		s.logger.Error("Health server error: %v", err)
	}
}

// exportBalanceMetric publishes the wallet balance in whole token units.
func (s *Server) exportBalanceMetric(chainID int, symbol string, balance *big.Int, client *chainclient.Client) {
	decimals, err := client.TokenDecimals(symbol)
	if err != nil {
		return
	}

	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	whole, _ := new(big.Float).Quo(new(big.Float).SetInt(balance), divisor).Float64()
	metrics.TokenBalance.WithLabelValues(strconv.Itoa(chainID), symbol).Set(whole)
}

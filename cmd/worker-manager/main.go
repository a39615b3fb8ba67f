// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"subscription-workers/internal/audit"
	"subscription-workers/internal/clients/coreapi"
	"subscription-workers/internal/clients/franchiseapi"
	"subscription-workers/internal/common/camunda"
	"subscription-workers/internal/common/config"
	"subscription-workers/internal/common/database"
	"subscription-workers/internal/common/logger"
	"subscription-workers/internal/common/observability"
	"subscription-workers/internal/routing"
	"subscription-workers/internal/verification"
	"subscription-workers/pkg/registry"

	// Subscription Workers
	vs "subscription-workers/internal/workers/subscription/verify-subscription"

	// User Workers
	fci "subscription-workers/internal/workers/user/fetch-core-info"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("OTel metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Audit Trail (Elasticsearch) ---
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		recorder = audit.NewIndexer(esClient.Client, cfg.Audit.Index, log)
		zapLog.Info("Elasticsearch connected successfully", zap.String("auditIndex", cfg.Audit.Index))
	} else {
		zapLog.Info("Audit trail disabled, verification events will not be indexed")
	}

	// --- Init Upstream API Clients ---
	coreClient := coreapi.NewClient(
		cfg.APIs.Core.BaseURL,
		cfg.APIs.Core.APIKey,
		config.GetDuration(cfg.APIs.Core.Timeout),
	)
	franchiseClient := franchiseapi.NewClient(
		cfg.APIs.Franchise.BaseURL,
		cfg.APIs.Franchise.APIKey,
		config.GetDuration(cfg.APIs.Franchise.Timeout),
	)
	zapLog.Info("Upstream API clients initialized")

	// --- Verification Stack ---
	store := routing.NewStore(pg.DB, redis.Client, time.Duration(cfg.Verification.RoutingCacheTTL)*time.Second, log)
	selector := routing.NewSelector(
		store,
		verification.NewDirectVerifier(coreClient),
		verification.NewResolvingVerifier(coreClient, franchiseClient),
	)

	// --- Load Activity Registry (input schemas) ---
	var verifySchema map[string]interface{}
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("activity registry not loaded, input schema validation disabled",
			zap.String("path", cfg.Registry.Path),
			zap.Error(err),
		)
	} else if act := reg.FindByTaskType(vs.TaskType); act != nil {
		verifySchema = act.InputSchema
	}

	// --- Register Workers ---
	var workers []*camunda.Worker

	// --- Subscription Workers ---
	if config.IsWorkerEnabled(cfg, vs.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, vs.TaskType)
		handler := vs.NewHandler(
			&vs.Config{
				Timeout:        config.GetDuration(wcfg.Timeout),
				ResultCacheTTL: time.Duration(cfg.Verification.ResultCacheTTL) * time.Second,
				InputSchema:    verifySchema,
			},
			selector, redis.Client, recorder, log,
		)
		workers = append(workers, camunda.NewWorker(zeebeClient, vs.TaskType, wcfg, handler, obs, zapLog))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", vs.TaskType))
	}

	// --- User Workers ---
	if config.IsWorkerEnabled(cfg, fci.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, fci.TaskType)
		handler := fci.NewHandler(
			&fci.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
			},
			coreClient, log,
		)
		workers = append(workers, camunda.NewWorker(zeebeClient, fci.TaskType, wcfg, handler, obs, zapLog))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", fci.TaskType))
	}

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			checks := map[string]string{
				"zeebe":    "ok",
				"postgres": "ok",
				"redis":    "ok",
			}
			ready := true
			if err := camundaClient.HealthCheck(checkCtx); err != nil {
				checks["zeebe"] = err.Error()
				ready = false
			}
			if err := pg.Ping(checkCtx); err != nil {
				checks["postgres"] = err.Error()
				ready = false
			}
			if err := redis.Ping(checkCtx); err != nil {
				checks["redis"] = err.Error()
				ready = false
			}

			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			if !ready {
				status = "not ready"
				w.WriteHeader(http.StatusServiceUnavailable)
			} else {
				w.WriteHeader(http.StatusOK)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": status,
				"checks": checks,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Close()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

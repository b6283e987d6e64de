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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"narrative-workers/internal/common/config"
	"narrative-workers/internal/common/database"
	"narrative-workers/internal/common/logger"
	"narrative-workers/internal/common/observability"
	"narrative-workers/internal/common/synthesis"
	"narrative-workers/internal/stores"

	gc "narrative-workers/internal/workers/content/generate-content"
	gks "narrative-workers/internal/workers/content/generate-kb-section"
	gs "narrative-workers/internal/workers/content/generate-storyline"
	vc "narrative-workers/internal/workers/content/validate-content"
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

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Stores & Synthesis Client ---
	factStore := stores.NewElasticFactStore(esClient.Client, cfg.Knowledge.Index, log)
	personaStore := stores.NewPostgresPersonaStore(pg.DB, redisClient.Client, log)
	brandStore := stores.NewPostgresBrandStore(pg.DB, redisClient.Client, log)

	synthClient := synthesis.NewClient(&synthesis.Config{
		BaseURL:     cfg.Synthesis.BaseURL,
		Timeout:     time.Duration(cfg.Synthesis.TimeoutMs) * time.Millisecond,
		MaxRetries:  cfg.Synthesis.MaxRetries,
		MaxTokens:   cfg.Synthesis.MaxTokens,
		Temperature: cfg.Synthesis.Temperature,
	}, log)

	zapLog.Info("Stores and synthesis client initialized")

	// --- Register Content Workers ---

	if cfg.Workers[gs.TaskType].Enabled {
		workerCfg := &gs.Config{
			Timeout:       time.Duration(cfg.Workers[gs.TaskType].Timeout) * time.Millisecond,
			MinConfidence: cfg.Knowledge.MinConfidence,
			MaxEntities:   cfg.Knowledge.MaxEntities,
		}
		service := gs.NewService(workerCfg, factStore, personaStore, brandStore, synthClient, log)
		handler := gs.NewHandler(workerCfg, service, log)
		startWorker(zeebeClient, gs.TaskType, cfg.Workers[gs.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gc.TaskType].Enabled {
		workerCfg := &gc.Config{
			Timeout:       time.Duration(cfg.Workers[gc.TaskType].Timeout) * time.Millisecond,
			MinConfidence: cfg.Knowledge.MinConfidence,
			MaxEntities:   cfg.Knowledge.MaxEntities,
			MaxSections:   20,
		}
		service := gc.NewService(workerCfg, factStore, personaStore, brandStore, synthClient, log)
		handler := gc.NewHandler(workerCfg, service, log)
		startWorker(zeebeClient, gc.TaskType, cfg.Workers[gc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gks.TaskType].Enabled {
		handler := gks.NewHandler(&gks.Config{
			Timeout:       time.Duration(cfg.Workers[gks.TaskType].Timeout) * time.Millisecond,
			MinConfidence: cfg.Knowledge.MinConfidence,
			MaxEntities:   cfg.Knowledge.MaxEntities,
		}, factStore, log)
		startWorker(zeebeClient, gks.TaskType, cfg.Workers[gks.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[vc.TaskType].Enabled {
		handler := vc.NewHandler(&vc.Config{
			Timeout: time.Duration(cfg.Workers[vc.TaskType].Timeout) * time.Millisecond,
		}, log)
		startWorker(zeebeClient, vc.TaskType, cfg.Workers[vc.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All content workers registered successfully")

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
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = shutdownCtx

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}

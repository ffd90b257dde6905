// cmd/pipeline-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"provider-validation/internal/common/aws"
	"provider-validation/internal/common/camunda"
	"provider-validation/internal/common/config"
	"provider-validation/internal/common/database"
	"provider-validation/internal/common/logger"
	"provider-validation/internal/common/observability"
	"provider-validation/internal/ingest"
	"provider-validation/internal/models"
	"provider-validation/internal/pipeline"
	"provider-validation/internal/server"
	"provider-validation/internal/store"
	"provider-validation/pkg/registry"

	// Validation Agents (4 pipeline stages)
	adq "provider-validation/internal/agents/assess-data-quality"
	epi "provider-validation/internal/agents/enrich-provider-info"
	gpr "provider-validation/internal/agents/generate-provider-report"
	vpd "provider-validation/internal/agents/validate-provider-data"

	// Batch Agents (3)
	at "provider-validation/internal/agents/analyze-trends"
	dd "provider-validation/internal/agents/detect-duplicates"
	sn "provider-validation/internal/agents/send-notification"
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
	batchMode := flag.Bool("batch", false, "run one validation batch over the configured data file and exit")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting pipeline manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("pipeline-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Agent Registry ---
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("agent registry unavailable", zap.String("path", cfg.Registry.Path), zap.Error(err))
	} else if err := reg.Validate(); err != nil {
		zapLog.Warn("agent registry invalid", zap.Error(err))
	} else {
		zapLog.Info("agent registry loaded", zap.Int("agents", len(reg.Agents)))
	}

	// --- Init PostgreSQL with retry (optional) ---
	var pg *database.PostgresClient
	var providerStore *store.ProviderStore
	if cfg.Database.Postgres.Enabled {
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

		providerStore = store.NewProviderStore(pg.DB)
		if err := providerStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("providers schema failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch with retry (optional) ---
	var reportIndexer *store.ReportIndexer
	if cfg.Database.Elasticsearch.Enabled {
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

		reportIndexer = store.NewReportIndexer(esClient.Client, cfg.Database.Elasticsearch.Index)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init Redis with retry (optional) ---
	var redis *database.RedisClient
	var reportCache *store.ReportCache
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()

		reportCache = store.NewReportCache(redis.Client, 0)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init AWS Clients (optional) ---
	var emailSender sn.EmailSender
	var alertPublisher sn.AlertPublisher
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailSender = sesClient
		zapLog.Info("SES client initialized")
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		alertPublisher = snsClient
		zapLog.Info("SNS client initialized")
	}

	// --- Batch Mode: run the full pipeline once and exit ---
	if *batchMode {
		if err := runBatch(ctx, cfg, log, zapLog, providerStore, reportCache, reportIndexer); err != nil {
			zapLog.Fatal("batch run failed", zap.Error(err))
		}
		zapLog.Info("Batch run completed successfully")
		return
	}

	// --- Init Zeebe Client with retry (optional) ---
	var brokerClient *camunda.Client
	var agentWorkers []*camunda.AgentWorker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			brokerClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		agentWorkers = registerAgents(cfg, brokerClient, redis, emailSender, alertPublisher, log, zapLog)
		zapLog.Info("All agents registered successfully", zap.Int("workers", len(agentWorkers)))
	}

	// --- Dashboard API Server ---
	var dashboardSrv *http.Server
	if cfg.Dashboard.Enabled {
		orchestrator := pipeline.NewOrchestrator(log)
		apiServer := server.New(orchestrator, reportCache, log)

		if providers, err := loadProviderFile(cfg.Pipeline.DataFile); err != nil {
			zapLog.Warn("no provider data file loaded", zap.String("path", cfg.Pipeline.DataFile), zap.Error(err))
		} else {
			apiServer.LoadProviders(providers)
			zapLog.Info("provider roster loaded", zap.Int("providers", len(providers)))
		}

		dashboardSrv = &http.Server{
			Addr:    cfg.Dashboard.Address,
			Handler: apiServer.Router(),
		}
		go func() {
			zapLog.Info("Dashboard API listening", zap.String("address", cfg.Dashboard.Address))
			if err := dashboardSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				zapLog.Error("Dashboard API failed", zap.Error(err))
			}
		}()
	}

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
			if brokerClient != nil {
				if err := brokerClient.HealthCheck(r.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					json.NewEncoder(w).Encode(map[string]string{
						"status": "not ready",
						"error":  err.Error(),
					})
					return
				}
			}
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

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if dashboardSrv != nil {
		if err := dashboardSrv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error shutting down dashboard API", zap.Error(err))
		}
	}

	for _, agentWorker := range agentWorkers {
		agentWorker.Close()
	}
	if brokerClient != nil {
		if err := brokerClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Pipeline manager stopped gracefully")
}

// registerAgents opens a Zeebe job worker for every enabled agent and
// returns the open workers so shutdown can drain them.
func registerAgents(
	cfg *config.Config,
	brokerClient *camunda.Client,
	redis *database.RedisClient,
	emailSender sn.EmailSender,
	alertPublisher sn.AlertPublisher,
	log logger.Logger,
	zapLog *zap.Logger,
) []*camunda.AgentWorker {
	seed := cfg.Pipeline.RandomSeed
	workers := []*camunda.AgentWorker{}
	start := func(taskType string, acfg config.AgentConfig, handler camunda.JobHandlerFunc) {
		if !acfg.Enabled {
			zapLog.Info("agent disabled", zap.String("taskType", taskType))
			return
		}
		w := camunda.NewWorker(
			brokerClient.GetClient(),
			taskType,
			acfg.MaxJobsActive,
			config.GetDuration(acfg.Timeout),
			handler,
			zapLog,
		)
		workers = append(workers, w)
	}

	// --- 1. Pipeline Stage Agents (4) ---
	if config.IsAgentEnabled(cfg, vpd.TaskType) {
		agentCfg := config.GetAgentConfig(cfg, vpd.TaskType)
		handler := vpd.NewHandler(
			&vpd.Config{
				Timeout: config.GetDuration(agentCfg.Timeout),
				Seed:    seed,
			},
			log,
		)
		start(vpd.TaskType, agentCfg, handler.Handle)
	}

	if config.IsAgentEnabled(cfg, epi.TaskType) {
		agentCfg := config.GetAgentConfig(cfg, epi.TaskType)
		handler := epi.NewHandler(
			&epi.Config{
				Timeout: config.GetDuration(agentCfg.Timeout),
				Seed:    seed,
			},
			log,
		)
		start(epi.TaskType, agentCfg, handler.Handle)
	}

	if config.IsAgentEnabled(cfg, adq.TaskType) {
		agentCfg := config.GetAgentConfig(cfg, adq.TaskType)
		qualityCfg := adq.LoadConfig()
		qualityCfg.Timeout = config.GetDuration(agentCfg.Timeout)
		qualityCfg.Seed = seed
		handler := adq.NewHandler(qualityCfg, log)
		start(adq.TaskType, agentCfg, handler.Handle)
	}

	if config.IsAgentEnabled(cfg, gpr.TaskType) {
		agentCfg := config.GetAgentConfig(cfg, gpr.TaskType)
		reportCfg := gpr.LoadConfig()
		reportCfg.Timeout = config.GetDuration(agentCfg.Timeout)
		handler := gpr.NewHandler(reportCfg, log)
		start(gpr.TaskType, agentCfg, handler.Handle)
	}

	// --- 2. Batch Agents (3) ---
	if config.IsAgentEnabled(cfg, dd.TaskType) {
		agentCfg := config.GetAgentConfig(cfg, dd.TaskType)
		dedupeCfg := dd.LoadConfig()
		dedupeCfg.Timeout = config.GetDuration(agentCfg.Timeout)

		var cache dd.ReportCache
		if redis != nil {
			cache = redis
		}
		handler := dd.NewHandler(dedupeCfg, cache, log)
		start(dd.TaskType, agentCfg, handler.Handle)
	}

	if config.IsAgentEnabled(cfg, sn.TaskType) {
		agentCfg := config.GetAgentConfig(cfg, sn.TaskType)
		handler := sn.NewHandler(
			&sn.Config{
				Timeout:       config.GetDuration(agentCfg.Timeout),
				FromAddress:   cfg.Notifications.Email.FromEmail,
				AlertTopicARN: os.Getenv("SNS_ALERT_TOPIC_ARN"),
				DryRun:        !cfg.Notifications.Email.Enabled,
			},
			emailSender, alertPublisher, log,
		)
		start(sn.TaskType, agentCfg, handler.Handle)
	}

	if config.IsAgentEnabled(cfg, at.TaskType) {
		agentCfg := config.GetAgentConfig(cfg, at.TaskType)
		handler := at.NewHandler(
			&at.Config{
				Timeout: config.GetDuration(agentCfg.Timeout),
				Seed:    seed,
			},
			log,
		)
		start(at.TaskType, agentCfg, handler.Handle)
	}

	return workers
}

// runBatch executes the in-process pipeline over the configured data file.
func runBatch(
	ctx context.Context,
	cfg *config.Config,
	log logger.Logger,
	zapLog *zap.Logger,
	providerStore *store.ProviderStore,
	reportCache *store.ReportCache,
	reportIndexer *store.ReportIndexer,
) error {
	providers, err := loadProviderFile(cfg.Pipeline.DataFile)
	if err != nil {
		return fmt.Errorf("load provider data: %w", err)
	}
	zapLog.Info("provider roster loaded", zap.Int("providers", len(providers)))

	orchestrator := pipeline.NewOrchestrator(log)
	batch, err := orchestrator.ValidateBatch(ctx, providers, cfg.Pipeline.BatchSize)
	if err != nil {
		return fmt.Errorf("validate batch: %w", err)
	}
	zapLog.Info("batch validated",
		zap.Int("total", batch.ProcessingStats.TotalProviders),
		zap.Int("needsReview", batch.ProcessingStats.ProvidersNeedingReview),
	)

	dedupeReport := orchestrator.DetectDuplicates(providers)
	zapLog.Info("duplicate scan completed",
		zap.Int("pairs", dedupeReport.Summary.PotentialDuplicatesFound))

	trendReport, err := orchestrator.AnalyzeTrends(ctx, batch.Results)
	if err != nil {
		zapLog.Warn("trend analysis failed", zap.Error(err))
	} else {
		zapLog.Info("trend analysis completed",
			zap.Int("insights", len(trendReport.KeyInsights)),
			zap.Int("recommendations", len(trendReport.Recommendations)),
		)
	}

	if cfg.Pipeline.PersistResults {
		out, err := ingest.ExportJSON(batch, true)
		if err != nil {
			return fmt.Errorf("export results: %w", err)
		}
		if err := os.WriteFile(cfg.Pipeline.ResultsFile, out, 0644); err != nil {
			return fmt.Errorf("write results file: %w", err)
		}
		zapLog.Info("results written", zap.String("path", cfg.Pipeline.ResultsFile))
	}

	if providerStore != nil {
		updated := make([]models.Provider, 0, len(batch.Results))
		for i := range batch.Results {
			updated = append(updated, batch.Results[i].Provider)
		}
		if err := providerStore.UpsertBatch(ctx, updated); err != nil {
			return fmt.Errorf("persist providers: %w", err)
		}
		zapLog.Info("providers persisted", zap.Int("providers", len(updated)))
	}

	if reportCache != nil {
		dashboard := orchestrator.GenerateDashboard(batch.Results)
		if err := reportCache.SaveDashboard(ctx, &dashboard); err != nil {
			zapLog.Warn("dashboard cache failed", zap.Error(err))
		}
		if err := reportCache.SaveBatch(ctx, batch); err != nil {
			zapLog.Warn("batch cache failed", zap.Error(err))
		}
		if err := reportCache.SaveDedupeReport(ctx, dedupeReport); err != nil {
			zapLog.Warn("dedupe cache failed", zap.Error(err))
		}
	}

	if cfg.Pipeline.IndexReports && reportIndexer != nil {
		reports := pipeline.Reports(batch.Results)
		if err := reportIndexer.IndexBatch(ctx, reports); err != nil {
			return fmt.Errorf("index reports: %w", err)
		}
		zapLog.Info("reports indexed", zap.Int("reports", len(reports)))
	}

	return nil
}

// loadProviderFile reads a provider roster from a JSON file on disk.
func loadProviderFile(path string) ([]models.Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ingest.ParseJSON(data)
}

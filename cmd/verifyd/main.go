// verifyd runs the claim-lifecycle pipeline: enrichment, claim extraction,
// follow-up scheduling, and roundup generation, behind a minimal admin
// surface for manual/cron-driven triggering.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/codeready-toolchain/verifyd/pkg/agent"
	"github.com/codeready-toolchain/verifyd/pkg/claims/extract"
	"github.com/codeready-toolchain/verifyd/pkg/config"
	"github.com/codeready-toolchain/verifyd/pkg/dateutil"
	"github.com/codeready-toolchain/verifyd/pkg/enrich"
	"github.com/codeready-toolchain/verifyd/pkg/lifecycle"
	"github.com/codeready-toolchain/verifyd/pkg/llm"
	"github.com/codeready-toolchain/verifyd/pkg/queue"
	"github.com/codeready-toolchain/verifyd/pkg/roundup"
	"github.com/codeready-toolchain/verifyd/pkg/store"
	"github.com/codeready-toolchain/verifyd/pkg/toolloop"
	"github.com/codeready-toolchain/verifyd/pkg/toolloop/tools"
	"github.com/codeready-toolchain/verifyd/pkg/version"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// qualityCallerAdapter adapts llm.Caller (which also returns an LM log ID)
// to config.QualityCaller's narrower two-return contract, since the
// selector call itself doesn't need to be logged as a pipeline result.
type qualityCallerAdapter struct {
	caller llm.Caller
	model  string
}

func (a qualityCallerAdapter) Call(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	output, _, err := a.caller.Call(ctx, llm.Request{
		CustomID:     "model-select",
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Model:        a.model,
	})
	return output, err
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	ginMode := getEnv("GIN_MODE", "debug")
	gin.SetMode(ginMode)

	log.Printf("Starting %s", version.Full())
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}
	stats := cfg.Stats()

	dbConfig, err := store.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	s, err := store.New(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()
	log.Println("✓ Connected to PostgreSQL database")
	log.Println("✓ Database schema initialized")

	grpcClient, err := agent.NewGRPCLLMClient(getEnv("LLM_SERVICE_ADDR", "localhost:50051"))
	if err != nil {
		log.Fatalf("Failed to create LLM service client: %v", err)
	}
	defer func() {
		if err := grpcClient.Close(); err != nil {
			log.Printf("Error closing LLM service client: %v", err)
		}
	}()

	defaultProvider, err := cfg.LLMProviderRegistry.Get(getEnv("DEFAULT_LLM_PROVIDER", "openai-default"))
	if err != nil {
		log.Fatalf("Failed to resolve default LLM provider: %v", err)
	}

	grpcCaller := llm.NewGRPCCaller(grpcClient, defaultProvider)
	syncDispatcher := llm.NewSyncDispatcher(grpcCaller, "verifyd-llm", 0)
	batchSubmitter := llm.NewOpenAIBatchSubmitter(nil, defaultProvider.BaseURL, defaultProvider.APIKeyEnv, defaultProvider.Model)
	minBatchLen, _ := strconv.Atoi(getEnv("MIN_BATCH_LEN", "20"))
	dispatcher := llm.NewDispatcher(batchSubmitter, syncDispatcher, minBatchLen)

	clock := dateutil.SystemClock{}

	runHour, _ := strconv.Atoi(getEnv("RUN_HOUR", "23"))
	scheduler := lifecycle.New(s, dispatcher, clock, runHour)
	enrichStage := enrich.New(s, dispatcher, getEnv("WORKER_ID", "verifyd-1"), clock)
	extractStage := extract.New(s, dispatcher, clock)

	ddg := tools.NewDuckDuckGoSearch(nil)
	toolSet := []toolloop.Tool{
		tools.NewWebSearch(ddg),
		tools.NewNewsSearch(ddg),
		tools.NewPageFetch(tools.NewHTTPFetcher()),
		tools.NewInternalSearch(s.Search()),
	}
	maxTurns, _ := strconv.Atoi(getEnv("TOOL_LOOP_MAX_TURNS", "8"))
	loop := toolloop.New(grpcClient, toolSet, maxTurns)

	models := config.NewModelSelectionTable(map[config.TaskType]map[config.Quality]config.ModelSelection{
		config.TaskProcess: {
			config.QualityHigh:   {Provider: getEnv("MODEL_PROCESS_HIGH", "openai-default"), Effort: "high"},
			config.QualityMedium: {Provider: getEnv("MODEL_PROCESS_MEDIUM", "openai-default"), Effort: "medium"},
			config.QualityLow:    {Provider: getEnv("MODEL_PROCESS_LOW", "openai-default"), Effort: "low"},
		},
		config.TaskAgent: {
			config.QualityHigh:   {Provider: getEnv("MODEL_AGENT_HIGH", "openai-default"), Effort: "high"},
			config.QualityMedium: {Provider: getEnv("MODEL_AGENT_MEDIUM", "openai-default"), Effort: "medium"},
			config.QualityLow:    {Provider: getEnv("MODEL_AGENT_LOW", "openai-default"), Effort: "low"},
		},
	})
	quality := qualityCallerAdapter{caller: grpcCaller, model: getEnv("SELECTOR_MODEL", "gpt-5-nano")}
	roundupGenerator := roundup.New(s, loop, cfg.LLMProviderRegistry, models, quality, clock)

	log.Println("✓ Pipeline stages initialized")

	var stagePool *queue.StagePool
	if getEnv("AUTO_SCHEDULE", "true") == "true" {
		stagePool = queue.NewStagePool(stageJobs(enrichStage, extractStage, scheduler, roundupGenerator), s.PipelineLocks(), getEnv("WORKER_ID", "verifyd-1"))
		stagePool.Start(ctx)
		defer stagePool.Stop()
		log.Println("✓ Stage pool polling enrich/extract/lifecycle/roundup")
	}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := s.DB().PingContext(reqCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unreachable",
				"error":    err.Error(),
			})
			return
		}

		body := gin.H{
			"status":   "healthy",
			"database": "connected",
			"version":  version.Full(),
			"configuration": gin.H{
				"llm_providers": stats.LLMProviders,
			},
		}
		if stagePool != nil {
			body["stages"] = stagePool.Health()
		}
		c.JSON(http.StatusOK, body)
	})

	router.POST("/internal/trigger/enrich", func(c *gin.Context) {
		runStage(c, "enrich", func(ctx context.Context) error {
			return enrichStage.Run(ctx, 100)
		})
	})
	router.POST("/internal/trigger/extract", func(c *gin.Context) {
		runStage(c, "extract", func(ctx context.Context) error {
			return extractStage.Run(ctx, 100)
		})
	})
	router.POST("/internal/trigger/lifecycle", func(c *gin.Context) {
		runStage(c, "lifecycle", scheduler.Run)
	})
	router.POST("/internal/trigger/roundup", func(c *gin.Context) {
		runStage(c, "roundup", roundupGenerator.Run)
	})

	log.Printf("HTTP server listening on :%s", httpPort)
	log.Printf("Health check available at: http://localhost:%s/health", httpPort)
	if err := router.Run(":" + httpPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// stageJobs builds the StagePool job list: enrich/extract poll frequently
// (new Articles arrive continuously), lifecycle and roundup poll on a
// slower interval (hourly by default) since they're gated on
// pipeline_today() crossing a boundary, not on new rows appearing.
func stageJobs(enrichStage *enrich.Stage, extractStage *extract.Stage, scheduler *lifecycle.Scheduler, roundupGenerator *roundup.Generator) []queue.StageJob {
	frequentInterval := envDuration("STAGE_POLL_INTERVAL", 5*time.Minute)
	dailyInterval := envDuration("STAGE_DAILY_POLL_INTERVAL", time.Hour)
	jitter := envDuration("STAGE_POLL_JITTER", 30*time.Second)

	return []queue.StageJob{
		{
			Name:         "enrich",
			Run:          func(ctx context.Context) error { return enrichStage.Run(ctx, 100) },
			PollInterval: frequentInterval,
			Jitter:       jitter,
		},
		{
			Name:         "extract",
			Run:          func(ctx context.Context) error { return extractStage.Run(ctx, 100) },
			PollInterval: frequentInterval,
			Jitter:       jitter,
		},
		{
			Name:         "lifecycle",
			Run:          scheduler.Run,
			PollInterval: dailyInterval,
			Jitter:       jitter,
		},
		{
			Name:         "roundup",
			Run:          roundupGenerator.Run,
			PollInterval: dailyInterval,
			Jitter:       jitter,
		},
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func runStage(c *gin.Context, name string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Minute)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Printf("%s stage failed: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"stage": name, "status": "failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stage": name, "status": "ok"})
}

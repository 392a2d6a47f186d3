package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/narrate/internal/api"
	"github.com/bobarin/narrate/internal/config"
	"github.com/bobarin/narrate/internal/manager"
	"github.com/bobarin/narrate/internal/queue"
	"github.com/bobarin/narrate/internal/services"
	"github.com/bobarin/narrate/internal/store"
	"github.com/bobarin/narrate/internal/voices"
	"github.com/bobarin/narrate/internal/worker"
)

func main() {
	log.Println("Starting Narrate API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Job registry with a janitor sweeping expired finished jobs
	retention := time.Duration(cfg.JobRetentionMinutes) * time.Minute
	st := store.New(retention)
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go st.StartJanitor(janitorCtx, time.Minute)
	log.Printf("Job retention: %s", retention)

	// In-memory FIFO job queue
	q := queue.New()

	catalog := voices.NewCatalog()
	m := manager.New(st, q, catalog)

	// Create API handler
	handler := api.NewHandler(m)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		ttsSvc, err := selectBackend(cfg)
		if err != nil {
			log.Fatalf("Failed to configure TTS provider: %v", err)
		}

		encoder := services.NewFFmpegEncoder(cfg.TempDir)

		w := worker.New(st, q, catalog, ttsSvc, encoder, worker.Options{
			ChunkChars:       cfg.ChunkChars,
			ChunkWorkers:     cfg.ChunkWorkers,
			SynthesisTimeout: time.Duration(cfg.SynthesisTimeoutSec) * time.Second,
			EncodeTimeout:    time.Duration(cfg.EncodeTimeoutSec) * time.Second,
		})

		// Start worker in background
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// selectBackend picks the synthesis provider from config. "auto" takes the
// first provider with a key, in preference order.
func selectBackend(cfg *config.Config) (services.SynthesisBackend, error) {
	provider := cfg.TTSProvider
	if provider == "auto" {
		switch {
		case cfg.ElevenLabsKey != "":
			provider = "elevenlabs"
		case cfg.OpenAIKey != "":
			provider = "openai"
		case cfg.CartesiaKey != "":
			provider = "cartesia"
		default:
			provider = "gemini"
		}
	}

	switch provider {
	case "elevenlabs":
		if cfg.ElevenLabsKey == "" {
			return nil, fmt.Errorf("TTS_PROVIDER=elevenlabs but ELEVENLABS_API_KEY is not set")
		}
		log.Println("TTS provider: ElevenLabs (model: eleven_flash_v2_5)")
		return services.NewElevenLabsService(cfg.ElevenLabsKey), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("TTS_PROVIDER=openai but OPENAI_API_KEY is not set")
		}
		log.Println("TTS provider: OpenAI (model: tts-1-hd)")
		return services.NewOpenAIService(cfg.OpenAIKey), nil
	case "cartesia":
		if cfg.CartesiaKey == "" {
			return nil, fmt.Errorf("TTS_PROVIDER=cartesia but CARTESIA_API_KEY is not set")
		}
		log.Println("TTS provider: Cartesia (legacy)")
		return services.NewCartesiaService(cfg.CartesiaKey, cfg.CartesiaURL), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("TTS_PROVIDER=gemini but GEMINI_API_KEY is not set")
		}
		log.Printf("TTS provider: Gemini (model: %s)", cfg.GeminiTTSModel)
		return services.NewGeminiService(cfg.GeminiKey, cfg.GeminiTTSModel), nil
	}
	return nil, fmt.Errorf("unknown TTS provider: %s", provider)
}

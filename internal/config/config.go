package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// TTS provider selection. "auto" picks the first provider with a key,
	// in order: elevenlabs, openai, cartesia, gemini.
	TTSProvider string

	// ElevenLabs (preferred TTS provider)
	ElevenLabsKey string

	// OpenAI
	OpenAIKey string

	// Cartesia (legacy TTS provider)
	CartesiaKey string
	CartesiaURL string

	// Gemini
	GeminiKey      string
	GeminiTTSModel string

	// Worker
	MaxConcurrentJobs   int
	ChunkChars          int
	ChunkWorkers        int
	SynthesisTimeoutSec int
	EncodeTimeoutSec    int

	// Jobs
	JobRetentionMinutes int // how long finished jobs (and their audio) stay queryable

	// Audio
	TempDir string // scratch space for the encoder
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:             getEnv("API_PORT", "8080"),
		WorkerEnabled:       getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:       getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", ""),
		TTSProvider:         getEnv("TTS_PROVIDER", "auto"),
		ElevenLabsKey:       getEnv("ELEVENLABS_API_KEY", ""),
		OpenAIKey:           getEnv("OPENAI_API_KEY", ""),
		CartesiaKey:         getEnv("CARTESIA_API_KEY", ""),
		CartesiaURL:         getEnv("CARTESIA_API_URL", "https://api.cartesia.ai"),
		GeminiKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiTTSModel:      getEnv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		MaxConcurrentJobs:   getEnvInt("MAX_CONCURRENT_JOBS", 4),
		ChunkChars:          getEnvInt("CHUNK_CHARS", 2000),
		ChunkWorkers:        getEnvInt("CHUNK_WORKERS", 3),
		SynthesisTimeoutSec: getEnvInt("SYNTHESIS_TIMEOUT_SEC", 90),
		EncodeTimeoutSec:    getEnvInt("ENCODE_TIMEOUT_SEC", 120),
		JobRetentionMinutes: getEnvInt("JOB_RETENTION_MINUTES", 60),
		TempDir:             getEnv("TEMP_DIR", "/tmp/narrate"),
	}

	// At least one TTS provider must be configured
	if cfg.ElevenLabsKey == "" && cfg.OpenAIKey == "" && cfg.CartesiaKey == "" && cfg.GeminiKey == "" {
		return nil, fmt.Errorf("at least one of ELEVENLABS_API_KEY, OPENAI_API_KEY, CARTESIA_API_KEY or GEMINI_API_KEY is required for TTS")
	}

	switch cfg.TTSProvider {
	case "auto", "elevenlabs", "openai", "cartesia", "gemini":
	default:
		return nil, fmt.Errorf("unknown TTS_PROVIDER %q (allowed: auto, elevenlabs, openai, cartesia, gemini)", cfg.TTSProvider)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

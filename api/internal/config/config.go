package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port string

	LineChannelSecret string
	LineChannelToken  string

	GeminiAPIKey string
	GeminiModel  string

	// Quiz policy knobs
	SessionTTL  time.Duration
	MaxAttempts int
	BaseAward   int
	HintPenalty int
	FailPenalty int
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("bad duration in env %s: %v", k, err)
	}
	return d
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		LineChannelSecret: mustEnv("LINE_CHANNEL_SECRET"),
		LineChannelToken:  mustEnv("LINE_CHANNEL_ACCESS_TOKEN"),

		GeminiAPIKey: mustEnv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		SessionTTL:  getDuration("QUIZ_SESSION_TTL", 30*time.Minute),
		MaxAttempts: 3,
		BaseAward:   10,
		HintPenalty: 2,
		FailPenalty: 2,
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	MySQLDSN  string
	RedisURL  string
	JWTSecret string
	Port      string

	// AI moderation backend
	AIProvider string // "openai" or "claude"
	OpenAIKey  string
	ClaudeKey  string
	AIModel    string

	// Budget for one external classification call before failing open.
	ModerationTimeout time.Duration
	// Consecutive clean posts before a user is marked trusted.
	TrustThreshold int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	timeoutSec, _ := strconv.Atoi(getenv("MODERATION_TIMEOUT", "8"))
	threshold, _ := strconv.Atoi(getenv("TRUST_THRESHOLD", "5"))
	return Config{
		MySQLDSN:          getenv("MYSQL_DSN", "roadway:roadway@tcp(localhost:3306)/roadway?parseTime=true"),
		RedisURL:          getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:         getenv("JWT_SECRET", ""),
		Port:              getenv("PORT", "3001"),
		AIProvider:        getenv("AI_PROVIDER", "openai"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		ClaudeKey:         os.Getenv("CLAUDE_API_KEY"),
		AIModel:           os.Getenv("AI_MODEL"),
		ModerationTimeout: time.Duration(timeoutSec) * time.Second,
		TrustThreshold:    threshold,
	}
}

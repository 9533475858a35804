package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"marksman/internal/qualification"
)

// Server captures process-level configuration. FromEnv keeps main lean.
type Server struct {
	Addr          string
	JWTSigningKey string

	PostgresURL string
	RedisURL    string

	KafkaBrokers []string
	KafkaTopic   string

	ClaimLeaseTTL time.Duration

	Sustainment qualification.SustainmentPolicy
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("MARKSMAN_ADDR", ":8080"),
		JWTSigningKey: envOr("MARKSMAN_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:   os.Getenv("MARKSMAN_POSTGRES_URL"),
		RedisURL:      os.Getenv("MARKSMAN_REDIS_URL"),
		KafkaTopic:    envOr("MARKSMAN_KAFKA_AUDIT_TOPIC", "marksman.audit"),
		ClaimLeaseTTL: 30 * time.Second,
		Sustainment:   sustainmentFromEnv(),
	}
	if brokers := os.Getenv("MARKSMAN_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if raw := os.Getenv("MARKSMAN_CLAIM_LEASE_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil {
			cfg.ClaimLeaseTTL = ttl
		}
	}
	return cfg
}

// sustainmentFromEnv lets operators override the sustainment-due threshold
// per category, e.g. MARKSMAN_SUSTAINMENT_DAYS_CAT3=180.
func sustainmentFromEnv() qualification.SustainmentPolicy {
	policy := qualification.DefaultSustainmentPolicy()
	overrides := map[qualification.Category]string{
		qualification.CategoryI:   "MARKSMAN_SUSTAINMENT_DAYS_CAT1",
		qualification.CategoryII:  "MARKSMAN_SUSTAINMENT_DAYS_CAT2",
		qualification.CategoryIII: "MARKSMAN_SUSTAINMENT_DAYS_CAT3",
		qualification.CategoryIV:  "MARKSMAN_SUSTAINMENT_DAYS_CAT4",
	}
	for category, key := range overrides {
		if raw := os.Getenv(key); raw != "" {
			if days, err := strconv.Atoi(raw); err == nil && days > 0 {
				policy[category] = days
			}
		}
	}
	return policy
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

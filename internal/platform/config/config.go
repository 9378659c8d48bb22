package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// DenominationFaceValues is the set of note and coin face values accepted
	// when a register session is counted at close.
	DenominationFaceValues []decimal.Decimal

	// ApprovalRequestTTL is how long a pending approval request may wait
	// before the scheduled sweep expires it.
	ApprovalRequestTTL time.Duration

	// ExpirySweepSpec is the cron expression driving the expiry sweep.
	ExpirySweepSpec string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("DENOMINATION_FACE_VALUES", "500,200,100,50,20,10,5,2,1,0.5")
	viper.SetDefault("APPROVAL_REQUEST_TTL", "72h")
	viper.SetDefault("EXPIRY_SWEEP_SPEC", "0 * * * *")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	faceValues, err := parseFaceValues(viper.GetString("DENOMINATION_FACE_VALUES"))
	if err != nil {
		log.Printf("Warning: Invalid value for DENOMINATION_FACE_VALUES: %v. Any positive face value will be accepted.\n", err)
		faceValues = nil
	}

	ttlStr := viper.GetString("APPROVAL_REQUEST_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 72 * time.Hour
		if ttlStr != "" {
			log.Printf("Warning: Invalid value for APPROVAL_REQUEST_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl.String())
		}
	}

	sweepSpec := viper.GetString("EXPIRY_SWEEP_SPEC")
	if sweepSpec == "" {
		sweepSpec = "0 * * * *"
		log.Printf("Warning: EXPIRY_SWEEP_SPEC not set. Defaulting to %s.\n", sweepSpec)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.DenominationFaceValues = faceValues
	cfg.ApprovalRequestTTL = ttl
	cfg.ExpirySweepSpec = sweepSpec

	return cfg, nil
}

// parseFaceValues parses a comma-separated list of decimal face values.
func parseFaceValues(raw string) ([]decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	values := make([]decimal.Decimal, 0, len(parts))
	for _, part := range parts {
		value, err := decimal.NewFromString(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Chain       ChainConfig
	Subsidy     SubsidyConfig
	Email       EmailConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey string
	TokenTTL  int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type ChainConfig struct {
	Network         string
	RPC_URL         string
	PrivateKey      string
	TokenAddress    string
	PoolAddress     string
	TransferTimeout int // in seconds
}

type SubsidyConfig struct {
	// RiskThreshold splits low-risk from high-risk documents. Policy knob,
	// not a code constant.
	RiskThreshold float64
	// DefaultAmount is the disbursement per approved document in token base
	// units, used when the approval request does not supply one.
	DefaultAmount int64
	DefaultPool   string
	// BootstrapCertifierWallet seeds the first certifier when none exist.
	BootstrapCertifierWallet string
}

// RateLimitConfig sets the per-IP request budgets. Auth and upload get their
// own, tighter buckets.
type RateLimitConfig struct {
	GeneralPerSecond int
	GeneralBurst     int
	AuthPerMinute    int
	UploadPerMinute  int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	OpsEmail     string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout: getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			// Approvals hold the response open while the fund transfer
			// confirms, so the write timeout must exceed the transfer bound.
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 180),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "greenhydro_subsidy"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			TokenTTL:  getEnvAsInt("JWT_TOKEN_TTL", 24), // 24 hours
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "greenhydro-documents"),
		},
		Chain: ChainConfig{
			Network:         getEnv("CHAIN_NETWORK", "sepolia"),
			RPC_URL:         getEnv("CHAIN_RPC_URL", ""),
			PrivateKey:      getEnv("CHAIN_PRIVATE_KEY", ""),
			TokenAddress:    getEnv("CHAIN_TOKEN_ADDRESS", ""),
			PoolAddress:     getEnv("CHAIN_POOL_ADDRESS", ""),
			TransferTimeout: getEnvAsInt("CHAIN_TRANSFER_TIMEOUT", 120), // 2 minutes
		},
		Subsidy: SubsidyConfig{
			RiskThreshold:            getEnvAsFloat("SUBSIDY_RISK_THRESHOLD", 0.5),
			DefaultAmount:            getEnvAsInt64("SUBSIDY_DEFAULT_AMOUNT", 1000),
			DefaultPool:              getEnv("SUBSIDY_DEFAULT_POOL", "main"),
			BootstrapCertifierWallet: getEnv("BOOTSTRAP_CERTIFIER_WALLET", ""),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond: getEnvAsInt("RATE_LIMIT_GENERAL_PER_SECOND", 10),
			GeneralBurst:     getEnvAsInt("RATE_LIMIT_GENERAL_BURST", 20),
			AuthPerMinute:    getEnvAsInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
			UploadPerMinute:  getEnvAsInt("RATE_LIMIT_UPLOAD_PER_MINUTE", 10),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@greenhydro.io"),
			FromName:     getEnv("FROM_NAME", "GreenHydro Subsidy"),
			OpsEmail:     getEnv("OPS_EMAIL", ""),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Subsidy.RiskThreshold < 0 || c.Subsidy.RiskThreshold > 1 {
		return fmt.Errorf("risk threshold must be within [0,1], got %f", c.Subsidy.RiskThreshold)
	}

	if c.Subsidy.DefaultAmount <= 0 {
		return fmt.Errorf("default subsidy amount must be positive")
	}

	if c.RateLimit.GeneralPerSecond <= 0 || c.RateLimit.GeneralBurst <= 0 ||
		c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.UploadPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

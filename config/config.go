package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds all configuration for the backend
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Batch    BatchConfig    `yaml:"batch"`
	Auth     AuthConfig     `yaml:"auth"`

	// Database handle, initialized by InitDatabase
	DB *gorm.DB `yaml:"-"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig configures the S3-compatible object store
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
}

// BatchConfig configures AWS Batch job submission
type BatchConfig struct {
	Region        string `yaml:"region"`
	JobQueue      string `yaml:"job_queue"`
	JobDefinition string `yaml:"job_definition"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

// Load reads configuration from a YAML file with environment overrides
// for credentials and connection strings
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables take precedence over the file
	cfg.Server.Port = getEnvOrDefault("PORT", defaultString(cfg.Server.Port, "8080"))
	cfg.Database.URL = getEnvOrDefault("DATABASE_URL", cfg.Database.URL)
	cfg.Storage.Endpoint = getEnvOrDefault("S3_ENDPOINT", defaultString(cfg.Storage.Endpoint, "s3.amazonaws.com"))
	cfg.Storage.AccessKey = getEnvOrDefault("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnvOrDefault("S3_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.Bucket = getEnvOrDefault("S3_BUCKET", defaultString(cfg.Storage.Bucket, "medvolt-cmd-standalone-test"))
	cfg.Batch.Region = getEnvOrDefault("AWS_REGION", defaultString(cfg.Batch.Region, "us-east-1"))
	cfg.Batch.JobQueue = getEnvOrDefault("BATCH_JOB_QUEUE", defaultString(cfg.Batch.JobQueue, "cmd-t4-queue"))
	cfg.Batch.JobDefinition = getEnvOrDefault("BATCH_JOB_DEFINITION", defaultString(cfg.Batch.JobDefinition, "cmd-standalone-airawat-job-definition:1"))
	cfg.Auth.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.Auth.JWTSecret)
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (config file or DATABASE_URL)")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required (config file or JWT_SECRET)")
	}

	return cfg, nil
}

// InitDatabase initializes the database connection with optimized settings
func (c *Config) InitDatabase() error {
	db, err := gorm.Open(postgres.Open(c.Database.URL), &gorm.Config{
		// Optimize query performance
		PrepareStmt: true,
		// Skip default transaction for better performance
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Auto-migrate database schema
	if err := db.AutoMigrate(&User{}, &Experiment{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	c.DB = db
	log.Println("Database initialized successfully")
	return nil
}

// Close closes all connections
func (c *Config) Close() {
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of New().
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Store backends accepted by StoreBackend.
const (
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// DefaultImportEndpoint is the remote source used by GET /load_external_data.
const DefaultImportEndpoint = "https://3ji5haxzr9.execute-api.us-east-1.amazonaws.com/dev/caseYolo"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN ERROR"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// StoreBackend picks the record store.
	StoreBackend string `koanf:"store_backend" validate:"required,oneof=dynamodb redis mongo memory"`

	// TableName is the DynamoDB table, the Mongo collection and the Redis key prefix.
	TableName string `koanf:"table_name" validate:"required"`

	AWSRegion        string `koanf:"aws_region"`
	DynamoDBEndpoint string `koanf:"dynamodb_endpoint" validate:"omitempty,url"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`

	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// ScanPageSize caps items per scan page; 0 keeps the backend default.
	ScanPageSize int `koanf:"scan_page_size" validate:"gte=0"`

	// ListMaxPages bounds GET /clientes pagination; 0 means unbounded.
	ListMaxPages int `koanf:"list_max_pages" validate:"gte=0"`

	// ImportEndpoint is fetched by the bulk import.
	ImportEndpoint string `koanf:"import_endpoint" validate:"required,url"`

	// ImportTimeout bounds the bulk import HTTP call.
	ImportTimeout time.Duration `koanf:"import_timeout" validate:"gt=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		StoreBackend:   BackendDynamoDB,
		TableName:      "yolo",
		AWSRegion:      "us-east-2",
		RedisAddr:      "localhost:6379",
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "clientes",
		ImportEndpoint: DefaultImportEndpoint,
		ImportTimeout:  30 * time.Second,
	}
}

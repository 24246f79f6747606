package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"go-docextract/extract"
	"go-docextract/logging"
	"go-docextract/providers"
	redis "go-docextract/redis"
)

type Config struct {
	ServerConfig ServerConfig `json:"server_config"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=text json"`

	Providers  providers.Config `json:"providers"`
	Extraction extract.Config   `json:"extraction"`

	MaxFileSizeBytes int64 `json:"max_file_size_bytes,omitempty" validate:"omitempty,min=1"`

	JwtPrivateKeyPath  string `json:"jwt_private_key_path,omitempty"`
	JwtIssuerId        string `json:"jwt_issuer_id,omitempty"`
	JwtValiditySeconds int    `json:"jwt_validity_seconds,omitempty" validate:"omitempty,min=1"`

	StorageType         string                    `json:"storage_type" validate:"omitempty,oneof=redis redis_sentinel memory none"`
	ResultTTLSeconds    int                       `json:"result_ttl_seconds,omitempty" validate:"omitempty,min=1"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "Path for the config.json to use")
	flag.Parse()

	if *configPath == "" {
		slog.Error("please provide a config path using the --config flag")
		os.Exit(1)
	}

	config, err := readConfigFile(*configPath)
	if err != nil {
		slog.Error("failed to read config file", "error", err)
		os.Exit(1)
	}

	if config.LogFormat == "json" {
		logging.InitJSONLogger(config.LogLevel)
	} else {
		logging.InitLogger(config.LogLevel)
	}

	slog.Info("using config", "path", *configPath)
	slog.Info("hosting on", "host", config.ServerConfig.Host, "port", config.ServerConfig.Port)

	jwtCreator, err := createJwtCreator(&config)
	if err != nil {
		slog.Error("failed to instantiate jwt creator", "error", err)
		os.Exit(1)
	}

	resultCache, err := createResultCache(&config)
	if err != nil {
		slog.Error("failed to instantiate result cache", "error", err)
		os.Exit(1)
	}

	ocr := providers.NewPassportOCRClient(config.Providers.OCR)
	vision := providers.NewVisionClient(config.Providers.Vision)
	template := providers.NewTemplateClient(config.Providers.Template)
	converter := providers.NewPageConverterClient(config.Providers.PageConverter)

	orchestrator := extract.NewOrchestrator(config.Extraction, ocr, vision, template, converter)

	serverState := ServerState{
		passportExtractor: orchestrator,
		authFormExtractor: orchestrator,
		resultCache:       resultCache,
		jwtCreator:        jwtCreator,
		healthCheckers:    []HealthChecker{ocr, vision, template, converter},
		maxFileSize:       config.MaxFileSizeBytes,
	}

	server, err := NewServer(&serverState, config.ServerConfig)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	err = server.ListenAndServe()
	if err != nil {
		slog.Error("failed to listen and serve", "error", err)
		os.Exit(1)
	}
}

func readConfigFile(path string) (Config, error) {
	configBytes, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	var config Config
	err = json.Unmarshal(configBytes, &config)

	if err != nil {
		return Config{}, err
	}

	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func createJwtCreator(config *Config) (JwtCreator, error) {
	if config.JwtPrivateKeyPath == "" {
		slog.Info("No jwt private key configured, responses will carry no hand-off jwt")
		return nil, nil
	}
	validity := time.Duration(config.JwtValiditySeconds) * time.Second
	return NewDefaultJwtCreator(config.JwtPrivateKeyPath, config.JwtIssuerId, validity)
}

func createResultCache(config *Config) (ResultCache, error) {
	ttl := DefaultResultTTL
	if config.ResultTTLSeconds > 0 {
		ttl = time.Duration(config.ResultTTLSeconds) * time.Second
	}
	if config.StorageType == "redis" {
		slog.Info("Using redis result cache")
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisResultCache(client, config.RedisConfig.Namespace, ttl), nil
	}
	if config.StorageType == "redis_sentinel" {
		slog.Info("Using redis sentinel result cache")
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisResultCache(client, config.RedisSentinelConfig.Namespace, ttl), nil
	}
	if config.StorageType == "memory" {
		slog.Info("Using in memory result cache")
		return NewInMemoryResultCache(), nil
	}
	if config.StorageType == "" || config.StorageType == "none" {
		slog.Info("Result caching disabled")
		return nil, nil
	}
	return nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}

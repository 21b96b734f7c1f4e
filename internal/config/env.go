// Package config defines environment configuration structs, reviewer presets
// and scenario file loading.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	SimEnvConfig
	ServerEnvConfig
	CacheEnvConfig
	RedisEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"prod"`
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSimEnv parses only the simulation defaults, for entrypoints that never
// start a server.
func LoadSimEnv() (*SimEnvConfig, error) {
	cfg, err := env.ParseAs[SimEnvConfig]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadRedisEnv() (*RedisEnvConfig, error) {
	cfg, err := env.ParseAs[RedisEnvConfig]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SimEnvConfig holds engine defaults applied when a request or scenario
// leaves a field empty.
type SimEnvConfig struct {
	Horizon         int     `env:"SIM_HORIZON" envDefault:"73"`
	CycleLengthDays float64 `env:"SIM_CYCLE_LENGTH_DAYS" envDefault:"2.84"`
	MaxReputation   float64 `env:"SIM_MAX_REPUTATION" envDefault:"5.0"`
	WeightSystem    string  `env:"SIM_WEIGHT_SYSTEM" envDefault:"current"`
	GrowthLaw       string  `env:"SIM_GROWTH_LAW" envDefault:"sqrt"`
	RewardModel     string  `env:"SIM_REWARD_MODEL" envDefault:"pool_share"`
	Preset          string  `env:"SIM_PRESET" envDefault:"casual"`
}

// ServerEnvConfig configures the HTTP service.
type ServerEnvConfig struct {
	Address       string        `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	Port          int           `env:"SERVER_PORT" envDefault:"8080"`
	BodySizeLimit int           `env:"SERVER_BODY_LIMIT" envDefault:"1048576"`
	ReadTimeout   time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout  time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
}

func (c ServerEnvConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheEnvConfig selects where deterministic simulation results are kept.
type CacheEnvConfig struct {
	CacheBackend string        `env:"CACHE_BACKEND" envDefault:"memory"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	CachePrefix  string        `env:"CACHE_PREFIX" envDefault:"reviewsim"`
}

func (c CacheEnvConfig) Backend() string {
	return strings.ToLower(c.CacheBackend)
}

// RedisEnvConfig configures Redis connection.
type RedisEnvConfig struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisUsername string `env:"REDIS_USERNAME"`
}

func (c RedisEnvConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

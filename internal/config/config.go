package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"finance-dashboard/internal/routeguard"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// FINANCE_UPSTREAM_CLIENT_SECRET or FINANCE_REDIS_PASSWORD.
const EnvPrefix = "FINANCE_"

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required (use --config or -c)")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML, applies environment overrides and validates the
// result.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func applyEnvironmentOverrides(config *Config) error {
	// Redis is optional; only keep the section if the environment filled it.
	if config.Redis == nil {
		config.Redis = &RedisConfig{}
		defer func() {
			if config.Redis.isZero() {
				config.Redis = nil
			}
		}()
	}

	return env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix})
}

func validateConfig(config *Config) error {

	err := config.validateServerConfig()
	if err != nil {
		return err
	}

	err = config.validateLogConfig()
	if err != nil {
		return err
	}

	err = config.validateCORSConfig()
	if err != nil {
		return err
	}

	err = config.validateSessionConfig()
	if err != nil {
		return err
	}

	err = config.validateEventsConfig()
	if err != nil {
		return err
	}

	if config.Sessions.Store == "redis" || config.Events.Type == "redis" {
		err = config.validateRedisConfig()
		if err != nil {
			return err
		}
	}

	err = config.validateUpstreamConfig()
	if err != nil {
		return err
	}

	err = config.validateAuthConfig()
	if err != nil {
		return err
	}

	err = config.validateRoutesConfig()
	if err != nil {
		return err
	}

	return nil
}

func (r *RedisConfig) isZero() bool {
	if r.Sentinel != nil && !r.Sentinel.isZero() {
		return false
	}
	return r.Address == "" && r.Username == "" && r.Password == "" && r.SessionIndex == 0
}

func (s *RedisSentinelConfig) isZero() bool {
	return s.MasterName == "" && len(s.SentinelAddresses) == 0 && s.SentinelUsername == "" && s.SentinelPassword == ""
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.StaticDir == "" {
		c.Server.StaticDir = DefaultServerConfig.StaticDir
	}

	if c.Server.Timeout <= 0 {
		c.Server.Timeout = DefaultServerConfig.Timeout
	}

	if c.Server.Debug != nil && c.Server.Debug.Enabled {
		if c.Server.Debug.Host == "" {
			c.Server.Debug.Host = DefaultDebugConfig.Host
		}
		if c.Server.Debug.Port <= 0 || c.Server.Debug.Port >= 65535 {
			c.Server.Debug.Port = DefaultDebugConfig.Port
		}
	}

	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s, options are text or json", c.Log.Format)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	if _, ok := logLevels[c.Log.Level]; !ok {
		return fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", c.Log.Level)
	}

	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	if level, ok := logLevels[l.Level]; ok {
		return level
	}
	return slog.LevelInfo
}

func (c *Config) validateCORSConfig() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = DefaultCORSConfig.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}

	return nil
}

func (c *Config) validateSessionConfig() error {
	if c.Sessions.Store == "" {
		c.Sessions.Store = DefaultSessionConfig.Store
	}

	switch c.Sessions.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid session store: %s, options are 'memory' or 'redis'", c.Sessions.Store)
	}

	if c.Sessions.Name == "" {
		c.Sessions.Name = DefaultSessionConfig.Name
	}

	if c.Sessions.Lifetime <= 0 {
		c.Sessions.Lifetime = DefaultSessionConfig.Lifetime
	}

	if c.Sessions.IdleTimeout <= 0 {
		c.Sessions.IdleTimeout = DefaultSessionConfig.IdleTimeout
	}

	if c.Sessions.IdleTimeout > c.Sessions.Lifetime {
		return fmt.Errorf("sessions.idle_timeout (%s) cannot exceed sessions.lifetime (%s)", c.Sessions.IdleTimeout, c.Sessions.Lifetime)
	}

	return nil
}

func (c *Config) validateEventsConfig() error {
	if c.Events.Type == "" {
		c.Events.Type = DefaultEventsConfig.Type
	}

	switch c.Events.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid events type: %s, must be 'memory' or 'redis'", c.Events.Type)
	}

	if c.Events.Channel == "" {
		c.Events.Channel = DefaultEventsConfig.Channel
	}

	return nil
}

func (c *Config) validateRedisConfig() error {
	if c.Redis == nil {
		return fmt.Errorf("redis configuration is required when sessions.store or events.type is 'redis'")
	}

	if c.Redis.Sentinel != nil && c.Redis.Sentinel.isZero() {
		c.Redis.Sentinel = nil
	}

	if c.Redis.Sentinel != nil {
		if c.Redis.Sentinel.MasterName == "" {
			return fmt.Errorf("sentinel master_name is required")
		}
		if len(c.Redis.Sentinel.SentinelAddresses) == 0 {
			return fmt.Errorf("at least one sentinel address is required")
		}
	} else {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}

		if _, _, err := net.SplitHostPort(c.Redis.Address); err != nil {
			return fmt.Errorf("invalid redis address format (expected host:port): %w", err)
		}
	}

	if c.Redis.SessionIndex < 0 {
		return fmt.Errorf("redis session_index must be non-negative, got %d", c.Redis.SessionIndex)
	}

	const maxRedisDB = 15
	if c.Redis.SessionIndex > maxRedisDB {
		return fmt.Errorf("redis session_index %d exceeds typical maximum of %d", c.Redis.SessionIndex, maxRedisDB)
	}

	return nil
}

func (c *Config) validateUpstreamConfig() error {
	if err := validateURL(c.Upstream.BaseURL, "upstream.base_url"); err != nil {
		return err
	}

	if c.Upstream.ClientID == "" {
		return fmt.Errorf("upstream.client_id is required")
	}

	if c.Upstream.TokenPath == "" {
		c.Upstream.TokenPath = DefaultUpstreamConfig.TokenPath
	}
	if err := validatePath(c.Upstream.TokenPath, "upstream.token_path"); err != nil {
		return err
	}

	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = DefaultUpstreamConfig.Timeout
	}

	if c.Upstream.DefaultTokenLifetime <= 0 {
		c.Upstream.DefaultTokenLifetime = DefaultUpstreamConfig.DefaultTokenLifetime
	}

	return nil
}

func (c *Config) validateAuthConfig() error {
	if c.Auth.SignInPath == "" {
		c.Auth.SignInPath = DefaultAuthConfig.SignInPath
	}
	if err := validatePath(c.Auth.SignInPath, "auth.signin_path"); err != nil {
		return err
	}

	if c.Auth.SignOutPath == "" {
		c.Auth.SignOutPath = DefaultAuthConfig.SignOutPath
	}
	if err := validatePath(c.Auth.SignOutPath, "auth.signout_path"); err != nil {
		return err
	}

	if c.Auth.SignInPath == c.Auth.SignOutPath {
		return fmt.Errorf("auth.signin_path and auth.signout_path must differ")
	}

	if c.Auth.TokenExpiryKey == "" {
		c.Auth.TokenExpiryKey = DefaultAuthConfig.TokenExpiryKey
	}

	if c.Auth.RefreshInterval <= 0 {
		c.Auth.RefreshInterval = DefaultAuthConfig.RefreshInterval
	} else if c.Auth.RefreshInterval < time.Second {
		return fmt.Errorf("auth.refresh_interval cannot be less than 1 second")
	}

	if c.Auth.RefreshBefore <= 0 {
		c.Auth.RefreshBefore = DefaultAuthConfig.RefreshBefore
	}

	if c.Auth.RefreshBefore < c.Auth.RefreshInterval {
		return fmt.Errorf("auth.refresh_before (%s) must be at least auth.refresh_interval (%s)", c.Auth.RefreshBefore, c.Auth.RefreshInterval)
	}

	if c.Auth.ProfileTimeout <= 0 {
		c.Auth.ProfileTimeout = DefaultAuthConfig.ProfileTimeout
	}

	if c.Auth.SweepInterval <= 0 {
		c.Auth.SweepInterval = DefaultAuthConfig.SweepInterval
	}

	return nil
}

func (c *Config) validateRoutesConfig() error {
	if len(c.Routes) == 0 {
		c.Routes = routeguard.DefaultRules()
	}

	if _, err := routeguard.New(c.Routes, c.Auth.SignOutPath); err != nil {
		return fmt.Errorf("invalid routes: %w", err)
	}

	return nil
}

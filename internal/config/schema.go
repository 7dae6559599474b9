package config

import (
	"time"

	"finance-dashboard/internal/routeguard"
)

type Config struct {
	Server   ServerConfig      `yaml:"server" envPrefix:"SERVER_"`
	Log      LogConfig         `yaml:"log" envPrefix:"LOG_"`
	CORS     CORSConfig        `yaml:"cors" envPrefix:"CORS_"`
	Sessions SessionConfig     `yaml:"sessions" envPrefix:"SESSIONS_"`
	Redis    *RedisConfig      `yaml:"redis" envPrefix:"REDIS_"`
	Upstream UpstreamConfig    `yaml:"upstream" envPrefix:"UPSTREAM_"`
	Auth     AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
	Routes   []routeguard.Rule `yaml:"routes" env:"-"`
	Events   EventsConfig      `yaml:"events" envPrefix:"EVENTS_"`
}

type ServerConfig struct {
	Port      int                `yaml:"port" env:"PORT"`
	StaticDir string             `yaml:"static_dir" env:"STATIC_DIR"`
	Timeout   time.Duration      `yaml:"timeout" env:"TIMEOUT"`
	Debug     *ServerDebugConfig `yaml:"debug"`
}

var DefaultServerConfig = ServerConfig{
	Port:      8080,
	StaticDir: "./web/dist",
	Timeout:   60 * time.Second,
}

type ServerDebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

var DefaultDebugConfig = ServerDebugConfig{
	Enabled: false,
	Host:    "localhost",
	Port:    5123,
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSeconds    int      `yaml:"max_age_seconds"`
}

var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"http://localhost:5173"},
	AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	AllowedHeaders: []string{"*"},
	MaxAgeSeconds:  300,
}

type SessionConfig struct {
	Store       string        `yaml:"store" env:"STORE"`
	Name        string        `yaml:"name" env:"NAME"`
	Lifetime    time.Duration `yaml:"lifetime" env:"LIFETIME"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	Secure      bool          `yaml:"secure" env:"SECURE"`
}

var DefaultSessionConfig = SessionConfig{
	Store:       "memory",
	Name:        "finance_session",
	Lifetime:    24 * time.Hour,
	IdleTimeout: 2 * time.Hour,
	Secure:      true,
}

type RedisConfig struct {
	Address      string               `yaml:"address" env:"ADDRESS"`
	Username     string               `yaml:"username" env:"USERNAME"`
	Password     string               `yaml:"password" env:"PASSWORD"`
	Sentinel     *RedisSentinelConfig `yaml:"sentinel" envPrefix:"SENTINEL_"`
	SessionIndex int                  `yaml:"session_index" env:"SESSION_INDEX"`
}

type RedisSentinelConfig struct {
	MasterName        string   `yaml:"master_name" env:"MASTER_NAME"`
	SentinelAddresses []string `yaml:"addresses" env:"ADDRESSES"`
	SentinelPassword  string   `yaml:"password" env:"PASSWORD"`
	SentinelUsername  string   `yaml:"username" env:"USERNAME"`
}

type UpstreamConfig struct {
	BaseURL              string        `yaml:"base_url" env:"BASE_URL"`
	ClientID             string        `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret         string        `yaml:"client_secret" env:"CLIENT_SECRET"`
	TokenPath            string        `yaml:"token_path" env:"TOKEN_PATH"`
	Scopes               []string      `yaml:"scopes" env:"SCOPES"`
	Timeout              time.Duration `yaml:"timeout" env:"TIMEOUT"`
	DefaultTokenLifetime time.Duration `yaml:"default_token_lifetime" env:"DEFAULT_TOKEN_LIFETIME"`
}

var DefaultUpstreamConfig = UpstreamConfig{
	TokenPath:            "/auth/token",
	Timeout:              15 * time.Second,
	DefaultTokenLifetime: 15 * time.Minute,
}

type AuthConfig struct {
	SignInPath      string        `yaml:"signin_path" env:"SIGNIN_PATH"`
	SignOutPath     string        `yaml:"signout_path" env:"SIGNOUT_PATH"`
	TokenExpiryKey  string        `yaml:"token_expiry_key" env:"TOKEN_EXPIRY_KEY"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"REFRESH_INTERVAL"`
	RefreshBefore   time.Duration `yaml:"refresh_before" env:"REFRESH_BEFORE"`
	ProfileTimeout  time.Duration `yaml:"profile_timeout" env:"PROFILE_TIMEOUT"`
	SweepInterval   time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
}

var DefaultAuthConfig = AuthConfig{
	SignInPath:      "/signin",
	SignOutPath:     "/signout",
	TokenExpiryKey:  "token_expiry",
	RefreshInterval: 30 * time.Second,
	RefreshBefore:   2 * time.Minute,
	ProfileTimeout:  10 * time.Second,
	SweepInterval:   5 * time.Minute,
}

type EventsConfig struct {
	Type    string `yaml:"type" env:"TYPE"` // "memory" or "redis"
	Channel string `yaml:"channel" env:"CHANNEL"`
}

var DefaultEventsConfig = EventsConfig{
	Type:    "memory",
	Channel: "finance_dashboard:events",
}

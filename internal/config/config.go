package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	AI       AIConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSOrigins        []string
	RateLimitPerMinute int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

type AIConfig struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	Timeout            time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	MaxOutputTokens    int
}

type EngineConfig struct {
	// TablesFile is an optional TOML file layered over the built-in tables.
	TablesFile string
}

type providerDefaults struct {
	baseURL string
	model   string
	keyEnv  string
}

var aiProviders = map[string]providerDefaults{
	"gemini":    {baseURL: "https://generativelanguage.googleapis.com/v1beta", model: "gemini-1.5-flash", keyEnv: "GEMINI_API_KEY"},
	"groq":      {baseURL: "https://api.groq.com/openai/v1", model: "llama-3.1-8b-instant", keyEnv: "GROQ_API_KEY"},
	"anthropic": {baseURL: "https://api.anthropic.com/v1", model: "claude-3-5-haiku-latest", keyEnv: "ANTHROPIC_API_KEY"},
	"none":      {},
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	server, err := loadServer()
	if err != nil {
		return cfg, err
	}
	cfg.Server = server

	database, err := loadDatabase()
	if err != nil {
		return cfg, err
	}
	cfg.Database = database

	authCfg, err := loadAuth()
	if err != nil {
		return cfg, err
	}
	cfg.Auth = authCfg

	aiCfg, err := loadAI()
	if err != nil {
		return cfg, err
	}
	cfg.AI = aiCfg

	cfg.Engine = loadEngine()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadAI загружает только настройки AI-провайдера (для CLI).
func LoadAI() (AIConfig, error) {
	if err := loadEnv(); err != nil {
		return AIConfig{}, err
	}

	cfg, err := loadAI()
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}

// LoadAuth загружает только настройки JWT (для CLI).
func LoadAuth() (AuthConfig, error) {
	if err := loadEnv(); err != nil {
		return AuthConfig{}, err
	}

	cfg, err := loadAuth()
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}

// LoadEngine загружает настройки движка (для CLI).
func LoadEngine() (EngineConfig, error) {
	if err := loadEnv(); err != nil {
		return EngineConfig{}, err
	}

	return loadEngine(), nil
}

func loadServer() (ServerConfig, error) {
	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return ServerConfig{}, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return ServerConfig{}, err
	}

	rateLimitPerMinute, err := parseIntEnv("API_RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return ServerConfig{}, err
	}

	rateLimitBurst, err := parseIntEnv("API_RATE_LIMIT_BURST", 20)
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Host:               getEnv("SERVER_HOST", "0.0.0.0"),
		Port:               serverPort,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		CORSOrigins:        parseCSVEnv("CORS_ALLOWED_ORIGINS"),
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}, nil
}

func loadDatabase() (DatabaseConfig, error) {
	dbPort, err := parseIntEnv("DB_PORT", 5432)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxOpenConns, err := parseIntEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return DatabaseConfig{}, err
	}

	maxIdleConns, err := parseIntEnv("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxIdleTime, err := parseDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	connMaxLifetime, err := parseDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return DatabaseConfig{}, err
	}

	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "budget"),
		Password:        getEnv("DB_PASSWORD", "budget"),
		Name:            getEnv("DB_NAME", "adaptive_budget"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}, nil
}

func loadAuth() (AuthConfig, error) {
	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return AuthConfig{}, err
	}

	return AuthConfig{
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "adaptive-budget"),
		AccessTokenTTL: accessTTL,
	}, nil
}

func loadAI() (AIConfig, error) {
	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 10*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	aiRateLimitPerMinute, err := parseIntEnv("AI_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return AIConfig{}, err
	}

	aiRateLimitBurst, err := parseIntEnv("AI_RATE_LIMIT_BURST", 10)
	if err != nil {
		return AIConfig{}, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 2048)
	if err != nil {
		return AIConfig{}, err
	}

	aiProvider := strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", "gemini")))
	defaults := aiProviders[aiProvider]

	aiAPIKey := getEnv("AI_API_KEY", "")
	if aiAPIKey == "" && defaults.keyEnv != "" {
		aiAPIKey = getEnv(defaults.keyEnv, "")
	}

	return AIConfig{
		Provider:           aiProvider,
		APIKey:             aiAPIKey,
		BaseURL:            getEnv("AI_BASE_URL", defaults.baseURL),
		Model:              getEnv("AI_MODEL", defaults.model),
		Timeout:            aiTimeout,
		RateLimitPerMinute: aiRateLimitPerMinute,
		RateLimitBurst:     aiRateLimitBurst,
		MaxOutputTokens:    aiMaxOutputTokens,
	}, nil
}

func loadEngine() EngineConfig {
	return EngineConfig{
		TablesFile: strings.TrimSpace(getEnv("ENGINE_TABLES_FILE", "")),
	}
}

// Enabled сообщает, нужно ли обращаться к живой модели. Без ключа используются только шаблоны.
func (c AIConfig) Enabled() bool {
	return c.Provider != "none" && strings.TrimSpace(c.APIKey) != ""
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if err := c.Auth.validate(); err != nil {
		return err
	}

	return c.AI.validate()
}

func (c AuthConfig) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be greater than 0")
	}

	return nil
}

func (c AIConfig) validate() error {
	if _, ok := aiProviders[c.Provider]; !ok {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, groq, anthropic, none")
	}

	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("AI_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}

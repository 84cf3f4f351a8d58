package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	Ai        AIConfig
	Interview InterviewConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	InterviewLogPath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini string
	Judge0       string
	Judge0Host   string
	JwtSecret    string
}

type AIConfig struct {
	LLMProvider   string // "gemini" or "ollama"
	LLMModel      string
	OllamaBaseURL string
	VisionModel   string
}

type InterviewConfig struct {
	LiveURL               string
	LiveModel             string
	Voice                 string
	ConnectTimeout        time.Duration
	HandshakeTimeout      time.Duration
	MaxConcurrentAnalyses int
	MaxPendingAnalyses    int
	SnapshotTTL           time.Duration
	ReportCacheTTL        time.Duration
	HRNotificationEmail   string
	Judge0URL             string
	JudgeTimeout          time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			InterviewLogPath:   getEnv("INTERVIEW_LOG_PATH", "logs/interview.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "IntelliView"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", ""),
			Judge0:       getEnv("JUDGE0_API_KEY", ""),
			Judge0Host:   getEnv("JUDGE0_API_HOST", "judge0-ce.p.rapidapi.com"),
			JwtSecret:    getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", "gemini-2.0-flash"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			VisionModel:   getEnv("VISION_MODEL", "gemini-2.0-flash"),
		},
		Interview: InterviewConfig{
			LiveURL:               getEnv("GEMINI_LIVE_URL", ""),
			LiveModel:             getEnv("GEMINI_LIVE_MODEL", ""),
			Voice:                 getEnv("INTERVIEW_VOICE", "Aoede"),
			ConnectTimeout:        getEnvAsDuration("INTERVIEW_CONNECT_TIMEOUT", 10*time.Second),
			HandshakeTimeout:      getEnvAsDuration("INTERVIEW_HANDSHAKE_TIMEOUT", 15*time.Second),
			MaxConcurrentAnalyses: getEnvAsInt("INTERVIEW_MAX_CONCURRENT_ANALYSES", 4),
			MaxPendingAnalyses:    getEnvAsInt("INTERVIEW_MAX_PENDING_ANALYSES", 0),
			SnapshotTTL:           getEnvAsDuration("INTERVIEW_SNAPSHOT_TTL", 2*time.Hour),
			ReportCacheTTL:        getEnvAsDuration("REPORT_CACHE_TTL", 24*time.Hour),
			HRNotificationEmail:   getEnv("HR_NOTIFICATION_EMAIL", ""),
			Judge0URL:             getEnv("JUDGE0_API_URL", "https://judge0-ce.p.rapidapi.com"),
			JudgeTimeout:          getEnvAsDuration("JUDGE0_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("15s", "2h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type MinIO struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketName    string
	UseSSL        bool
	PublicBaseURL string
}

type OpenAI struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type Freepik struct {
	APIKey                 string
	BaseURL                string
	PollInterval           time.Duration
	MaxAttempts            int
	ImproveMaxAttempts     int
	ImproveBestEffortTries int
	PromptMaxLength        int
	RenderText             bool
	DownloadTimeout        time.Duration
}

type Generation struct {
	InteractivePolicy string
	ScheduledPolicy   string
	StatusClearDelay  time.Duration
	DefaultFormat     string
}

type Sweep struct {
	CronSecret  string
	CronSpec    string
	MaxDuration time.Duration
}

type Config struct {
	Port                  string
	InstagramClientID     string
	InstagramClientSecret string
	InstagramRedirectURI  string
	GoogleClientID        string
	GoogleClientSecret    string
	GoogleRedirectURI     string
	PostgresURI           string
	RedisURI              string
	FrontendURL           string
	StorageDriver         string
	R2                    R2
	MinIO                 MinIO
	OpenAI                OpenAI
	Freepik               Freepik
	Generation            Generation
	Sweep                 Sweep
	SecretKey             string
	EncryptionKey         string
	CookieName            string
	WebhookSecret         string
	AdminSecret           string
	AdminUserID           int64
	AdminBrandKitID       string
	LogMode               string
}

func LoadConfig() *Config {
	return &Config{
		Port:                  getEnv("PORT", "3000"),
		InstagramClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
		InstagramClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
		InstagramRedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:     getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/login/callback"),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		StorageDriver:         strings.ToLower(getEnv("STORAGE_DRIVER", "r2")),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		MinIO: MinIO{
			Endpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName:    getEnv("MINIO_BUCKET_NAME", "posters"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", "http://localhost:9000"),
		},
		OpenAI: OpenAI{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.8),
			Timeout:     getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Freepik: Freepik{
			APIKey:                 getEnv("FREEPIK_API_KEY", ""),
			BaseURL:                strings.TrimRight(getEnv("FREEPIK_BASE_URL", "https://api.freepik.com"), "/"),
			PollInterval:           getEnvDuration("FREEPIK_POLL_INTERVAL", 3*time.Second),
			MaxAttempts:            getEnvAsInt("FREEPIK_MAX_ATTEMPTS", 60),
			ImproveMaxAttempts:     getEnvAsInt("FREEPIK_IMPROVE_MAX_ATTEMPTS", 20),
			ImproveBestEffortTries: getEnvAsInt("FREEPIK_IMPROVE_BEST_EFFORT_ATTEMPTS", 5),
			PromptMaxLength:        getEnvAsInt("FREEPIK_PROMPT_MAX_LENGTH", 2500),
			RenderText:             getEnvBool("FREEPIK_RENDER_TEXT", false),
			DownloadTimeout:        getEnvDuration("FREEPIK_DOWNLOAD_TIMEOUT", 30*time.Second),
		},
		Generation: Generation{
			InteractivePolicy: getEnv("IMPROVE_PROMPT_POLICY_INTERACTIVE", "best-effort"),
			ScheduledPolicy:   getEnv("IMPROVE_PROMPT_POLICY_SCHEDULED", "always"),
			StatusClearDelay:  getEnvDuration("STATUS_CLEAR_DELAY", 10*time.Second),
			DefaultFormat:     getEnv("DEFAULT_POSTER_FORMAT", "instagram_portrait"),
		},
		Sweep: Sweep{
			CronSecret:  getEnv("CRON_SECRET", ""),
			CronSpec:    getEnv("SWEEP_CRON_SPEC", ""),
			MaxDuration: getEnvDuration("SWEEP_MAX_DURATION", 5*time.Minute),
		},
		SecretKey:       getEnv("SECRET_KEY", ""),
		EncryptionKey:   getEnv("ENCRYPTION_KEY", ""),
		CookieName:      getEnv("COOKIE_NAME", "poster_session"),
		WebhookSecret:   getEnv("SNIPPE_WEBHOOK_SECRET", ""),
		AdminSecret:     getEnv("ADMIN_SECRET", ""),
		AdminUserID:     int64(getEnvAsInt("ADMIN_USER_ID", 0)),
		AdminBrandKitID: getEnv("ADMIN_BRAND_KIT_ID", "00000000-0000-0000-0000-00000000a0a0"),
		LogMode:         getEnv("LOG_MODE", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

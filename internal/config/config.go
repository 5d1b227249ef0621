package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppPort         string
	AppBaseURL      string
	DBDSN           string
	JWTSecret       string
	JWTExpiresMin   int
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
	CORSOrigins     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UploadDir          string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	GeminiAPIKey string
	GeminiModel  string

	MailFrom string

	LogLevel        string
	WorkerCount     int
	WorkerQueue     int
	RankIntervalMin int
}

func Load() Config {
	return Config{
		AppPort:         get("APP_PORT", "8080"),
		AppBaseURL:      strings.TrimRight(get("APP_BASE_URL", ""), "/"),
		DBDSN:           must("DB_DSN"),
		JWTSecret:       must("JWT_SECRET"),
		JWTExpiresMin:   getInt("JWT_EXPIRES_MIN", 10080),
		GoogleClientID:  get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:    get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),
		CORSOrigins:     get("CORS_ORIGINS", "http://127.0.0.1:3000, http://localhost:3000"),

		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		UploadDir:          get("UPLOAD_DIR", "./uploads"),
		SupabaseURL:        strings.TrimRight(get("SUPABASE_URL", ""), "/"),
		SupabaseServiceKey: get("SUPABASE_SERVICE_KEY", ""),
		SupabaseBucket:     get("SUPABASE_BUCKET", "uploads"),

		GeminiAPIKey: get("GEMINI_API_KEY", ""),
		GeminiModel:  get("GEMINI_MODEL", "gemini-2.5-flash"),

		MailFrom: get("MAIL_FROM", "no-reply@skillhub.local"),

		LogLevel:        get("LOG_LEVEL", "info"),
		WorkerCount:     getInt("WORKER_COUNT", 4),
		WorkerQueue:     getInt("WORKER_QUEUE", 256),
		RankIntervalMin: getInt("RANK_INTERVAL_MIN", 60),
	}
}

// UseSupabase is true when both supabase credentials are present.
func (c Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	n, err := strconv.Atoi(get(k, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

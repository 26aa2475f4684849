package config

import (
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool
	LogLevel     string

	Port        string
	CORSOrigins []string

	// JWT
	JWTSecret   string
	JWTTTLHours int

	// persistence: DB_DRIVER is "sqlite" (default) or "mysql"
	DBDriver  string
	DBDSN     string
	RedisAddr string

	// response generation
	IsOpenAIEnabled      bool
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	DefaultModel         string
	StreamChunkDelayMs   int
	StreamTimeoutSeconds int

	// runtime tunables
	RateLimitWindowSeconds   int
	RateLimitCapacity        int
	UserConcurrencyLimit     int
	PrincipalCacheTTLSeconds int
	PrincipalCacheMaxItems   int

	// optional admin seeded at startup
	AdminEmail    string
	AdminName     string
	AdminPassword string
)

// loadAppEnv only reads .env outside production; a missing file is not fatal.
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
}

// Load reads the environment (and .env when not in production) into the package vars.
func Load() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "staging"
	}
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		log.Fatal("environment variable APP_ENV must be 'staging' or 'production'")
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"
	LogLevel = strOr(os.Getenv("LOG_LEVEL"), "info")

	Port = strOr(os.Getenv("PORT"), "8080")
	CORSOrigins = splitList(strOr(os.Getenv("CORS_ORIGINS"), "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173"))

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	JWTTTLHours = atoiOr(os.Getenv("JWT_TTL_HOURS"), 24)

	DBDriver = strings.ToLower(strOr(os.Getenv("DB_DRIVER"), "sqlite"))
	DBDSN = strOr(os.Getenv("DB_DSN"), "chatbot.db")
	RedisAddr = os.Getenv("REDIS_ADDR")

	IsOpenAIEnabled = os.Getenv("IS_OPENAI_ENABLED") == "1"
	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	DefaultModel = strOr(os.Getenv("DEFAULT_MODEL"), "gpt-3.5-turbo")
	StreamChunkDelayMs = atoiOr(os.Getenv("STREAM_CHUNK_DELAY_MS"), 100)
	StreamTimeoutSeconds = atoiOr(os.Getenv("STREAM_TIMEOUT_SECONDS"), 30)

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	UserConcurrencyLimit = atoiOr(os.Getenv("USER_CONCURRENCY_LIMIT"), 2)
	PrincipalCacheTTLSeconds = atoiOr(os.Getenv("PRINCIPAL_CACHE_TTL_SECONDS"), 30)
	PrincipalCacheMaxItems = atoiOr(os.Getenv("PRINCIPAL_CACHE_MAX_ITEMS"), 1000)

	AdminEmail = strings.TrimSpace(strings.ToLower(os.Getenv("ADMIN_EMAIL")))
	AdminName = strOr(os.Getenv("ADMIN_NAME"), "admin")
	AdminPassword = os.Getenv("ADMIN_PASSWORD")

	if JWTSecret == "" {
		if IsProduction {
			log.Fatal("JWT_SECRET_KEY must be set in production")
		}
		JWTSecret = "dev-secret-change-me"
		log.Printf("[config] JWT_SECRET_KEY not set, using development secret")
	}

	log.Printf("[config] AppEnv=%s Port=%s DBDriver=%s Redis=%v", AppEnv, Port, DBDriver, RedisAddr != "")
	log.Printf("[config] OpenAIEnabled=%v OpenAIKeyPresent=%v DefaultModel=%s", IsOpenAIEnabled, OpenAIAPIKey != "", DefaultModel)
	log.Printf("[config] RateLimit window=%ds capacity=%d userConc=%d streamDelay=%dms streamTimeout=%ds",
		RateLimitWindowSeconds, RateLimitCapacity, UserConcurrencyLimit, StreamChunkDelayMs, StreamTimeoutSeconds)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func strOr(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

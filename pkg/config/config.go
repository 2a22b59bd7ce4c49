package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultMaxThumbnailBytes is the upload ceiling applied by both the server and
// the client when MAX_THUMBNAIL_BYTES is not set.
const DefaultMaxThumbnailBytes int64 = 1 << 20

type Config struct {
	Port              string
	DatabaseURL       string
	AppEnv            string
	BaseURL           string
	AdminPassword     string
	EditPassword      string
	SupabaseURL       string
	SupabaseKey       string
	ThumbnailBucket   string
	ThumbnailDir      string
	MaxThumbnailBytes int64
	ExportPrefix      string
	APIURL            string
	Password          string
	AllowedOrigins    string
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	baseURL := getEnv("BASE_URL", "http://localhost:8080")

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:            getEnv("APP_ENV", "local"),
		BaseURL:           baseURL,
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin"),
		EditPassword:      getEnv("EDIT_PASSWORD", "1"),
		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseKey:       getEnv("SUPABASE_SERVICE_KEY", ""),
		ThumbnailBucket:   getEnv("THUMBNAIL_BUCKET", "edutech-thumbnails"),
		ThumbnailDir:      getEnv("THUMBNAIL_DIR", "./data/thumbnails"),
		MaxThumbnailBytes: getEnvInt64("MAX_THUMBNAIL_BYTES", DefaultMaxThumbnailBytes),
		ExportPrefix:      getEnv("EXPORT_PREFIX", "edutech_cards"),
		APIURL:            getEnv("EDUTECH_API_URL", baseURL),
		Password:          getEnv("EDUTECH_PASSWORD", ""),
		AllowedOrigins:    getEnv("CORS_ORIGINS", "*"),
	}
}

// UsesSupabase reports whether thumbnails go to Supabase Storage instead of local disk.
func (c *Config) UsesSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("config: ignoring invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

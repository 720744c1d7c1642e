package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       *AppConfig       `yaml:"app"`
	Firebase  *FirebaseConfig  `yaml:"firebase"`
	Storage   *StorageConfig   `yaml:"storage"`
	Maps      *MapsConfig      `yaml:"maps"`
	Redis     *RedisConfig     `yaml:"redis"`
	WebSocket *WebSocketConfig `yaml:"websocket"`
	Security  *SecurityConfig  `yaml:"security"`
	Logging   *LoggingConfig   `yaml:"logging"`
}

type AppConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Environment     string        `yaml:"environment"`
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	Debug           bool          `yaml:"debug"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SecurityConfig struct {
	// AdminEmails and AdminDomain decide who may edit clubs.
	AdminEmails        []string `yaml:"admin_emails"`
	AdminDomain        string   `yaml:"admin_domain"`
	// AdminNameHeuristic grants admin to emails whose local part contains "admin" when no
	// AdminEmails or AdminDomain are set. Development only.
	AdminNameHeuristic bool     `yaml:"admin_name_heuristic"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	TrustedProxies     []string `yaml:"trusted_proxies"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	Caller bool   `yaml:"caller"`
}

func Load() (*Config, error) {
	config := &Config{
		App:       loadAppConfig(),
		Firebase:  loadFirebaseConfig(),
		Storage:   loadStorageConfig(),
		Maps:      loadMapsConfig(),
		Redis:     loadRedisConfig(),
		WebSocket: loadWebSocketConfig(),
		Security:  loadSecurityConfig(),
		Logging:   loadLoggingConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects provider names the server cannot build.
func (c *Config) Validate() error {
	switch c.Firebase.DocumentStore {
	case DocumentStoreFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore document store")
		}
	case DocumentStoreMemory:
	default:
		return fmt.Errorf("unknown document store %q", c.Firebase.DocumentStore)
	}

	switch c.Storage.Provider {
	case StorageLocal, StorageMemory:
	case StorageFirebase:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firebase storage provider")
		}
	case StorageS3:
		if c.Storage.AWS.Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required for the s3 storage provider")
		}
	case StorageCloudinary:
		if c.Storage.Cloudinary.URL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required for the cloudinary storage provider")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}

	if c.Security.AdminNameHeuristic && c.App.Environment == "production" {
		return fmt.Errorf("ADMIN_NAME_HEURISTIC cannot be enabled in production")
	}

	switch c.Maps.Provider {
	case "google", "mapbox", "":
	default:
		return fmt.Errorf("unknown maps provider %q", c.Maps.Provider)
	}

	return nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:            getEnv("APP_NAME", "tabl"),
		Version:         getEnv("APP_VERSION", "1.0.0"),
		Environment:     getEnv("APP_ENV", "development"),
		Port:            getEnvAsInt("APP_PORT", 8080),
		Host:            getEnv("APP_HOST", "0.0.0.0"),
		Debug:           getEnvAsBool("APP_DEBUG", false),
		ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		AdminEmails:        getEnvAsSlice("ADMIN_EMAILS", []string{}),
		AdminDomain:        getEnv("ADMIN_DOMAIN", ""),
		AdminNameHeuristic: getEnvAsBool("ADMIN_NAME_HEURISTIC", false),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
		Output: getEnv("LOG_OUTPUT", "stdout"),
		Caller: getEnvAsBool("LOG_CALLER", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsSlice splits on commas and drops blank entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}

func IsDevelopment() bool {
	return getEnv("APP_ENV", "development") == "development"
}

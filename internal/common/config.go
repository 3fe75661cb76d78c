package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
	Archive  ArchiveConfig
	Auth     AuthConfig
}

// DatabaseConfig holds job store configuration. An empty DSN selects the
// embedded sqlite store at SQLitePath.
type DatabaseConfig struct {
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	GRPCAddr       string
	UploadDir      string
	MaxUploadBytes int64
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// OCRConfig holds recognition and rendering configuration
type OCRConfig struct {
	Pdftoppm       string
	Tesseract      string
	TesseractLang  string
	TessdataDir    string
	DPI            int
	MaxPages       int
	PSMs           []int
	OEM            int
	MinConfidence  float64
	TryRotations   bool
	VariantMode    string
	NativeBackend  string
	Backend        string
	TempDir        string
	VocabularyFile string
}

// LLMConfig holds remote inference configuration
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration
}

// PipelineConfig holds orchestration settings
type PipelineConfig struct {
	Mode          string // "rooms" or "walls"
	Deadline      time.Duration
	RemoteShare   float64
	RemoteEnabled bool
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	KeyPrefix     string
}

// ArchiveConfig holds object storage configuration for uploaded plans
type ArchiveConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// AuthConfig holds bearer auth configuration for the upload API
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "file:plan_parser.db?cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
			GRPCAddr:       getEnv("GRPC_ADDR", ":8081"),
			UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 25)) << 20,
			AllowedOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 3*time.Minute),
		},
		OCR: OCRConfig{
			Pdftoppm:       getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:      getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang:  getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:    getEnv("TESSDATA_PREFIX", ""),
			DPI:            getEnvAsInt("OCR_DPI", 300),
			MaxPages:       getEnvAsInt("OCR_MAX_PAGES", 6),
			PSMs:           getEnvAsIntList("OCR_PSMS", []int{6, 4, 8, 11, 12}),
			OEM:            getEnvAsInt("OCR_OEM", 3),
			MinConfidence:  getEnvAsFloat64("OCR_MIN_CONFIDENCE", 30),
			TryRotations:   getEnvAsBool("OCR_TRY_ROTATIONS", true),
			VariantMode:    getEnv("OCR_VARIANT_MODE", "best"),
			NativeBackend:  getEnv("PDF_TEXT_BACKEND", "pdfreader"),
			Backend:        getEnv("OCR_BACKEND", "tesseract"),
			TempDir:        getEnv("OCR_TEMP_DIR", ""),
			VocabularyFile: getEnv("PLAN_VOCABULARY_FILE", ""),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "gemini"),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 90*time.Second),
			MaxAttempts: getEnvAsInt("GEMINI_MAX_ATTEMPTS", 3),
			BaseBackoff: getEnvAsDuration("GEMINI_BACKOFF", 2*time.Second),
		},
		Pipeline: PipelineConfig{
			Mode:          getEnv("PIPELINE_MODE", "rooms"),
			Deadline:      getEnvAsDuration("PIPELINE_DEADLINE", 150*time.Second),
			RemoteShare:   getEnvAsFloat64("PIPELINE_REMOTE_SHARE", 0.6),
			RemoteEnabled: getEnvAsBool("PIPELINE_REMOTE_ENABLED", true),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			TTL:           getEnvAsDuration("RESULT_CACHE_TTL", 24*time.Hour),
			KeyPrefix:     getEnv("RESULT_CACHE_PREFIX", "plan:result:"),
		},
		Archive: ArchiveConfig{
			Bucket:    getEnv("ARCHIVE_BUCKET", ""),
			Region:    getEnv("AWS_REGION", "us-east-1"),
			Endpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Prefix:    getEnv("ARCHIVE_PREFIX", "plans/"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsIntList(key string, defaultValue []int) []int {
	var out []int
	for _, s := range getEnvAsList(key, nil) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return defaultValue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.Mode != "rooms" && c.Pipeline.Mode != "walls" {
		return NewAppError("CONFIG_ERROR", "PIPELINE_MODE must be rooms or walls", ErrInvalidInput)
	}
	if c.Pipeline.RemoteShare <= 0 || c.Pipeline.RemoteShare >= 1 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_REMOTE_SHARE must be in (0,1)", ErrInvalidInput)
	}
	if c.OCR.MaxPages < 1 {
		return NewAppError("CONFIG_ERROR", "OCR_MAX_PAGES must be at least 1", ErrInvalidInput)
	}
	if c.OCR.VariantMode != "best" && c.OCR.VariantMode != "all" {
		return NewAppError("CONFIG_ERROR", "OCR_VARIANT_MODE must be best or all", ErrInvalidInput)
	}
	if c.LLM.MaxAttempts < 1 {
		return NewAppError("CONFIG_ERROR", "GEMINI_MAX_ATTEMPTS must be at least 1", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	APIPort  string
	LogLevel string

	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string
	KeepUploads       bool

	ModelDir              string
	ModelVectorizerPath   string
	ModelClassifierPath   string
	ModelLabelEncoderPath string

	APIKey              string
	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	APIQueueTimeoutMS   int
	ServerReadTimeoutS  int
	ServerWriteTimeoutS int

	ModelBreakerEnabled       bool
	ModelBreakerMinRequests   int
	ModelBreakerFailureRatio  float64
	ModelBreakerOpenTimeoutMS int
}

func Load() Config {
	modelDir := mustEnv("MODEL_DIR", "./models")
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		UploadDir:         mustEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:    mustEnvInt64("MAX_UPLOAD_BYTES", 16<<20),
		AllowedExtensions: mustEnvList("ALLOWED_EXTENSIONS", []string{"pdf", "doc", "docx"}),
		KeepUploads:       mustEnvBool("KEEP_UPLOADS", true),

		ModelDir:              modelDir,
		ModelVectorizerPath:   mustEnv("MODEL_VECTORIZER_PATH", filepath.Join(modelDir, "vectorizer.json")),
		ModelClassifierPath:   mustEnv("MODEL_CLASSIFIER_PATH", filepath.Join(modelDir, "classifier.json")),
		ModelLabelEncoderPath: mustEnv("MODEL_LABEL_ENCODER_PATH", filepath.Join(modelDir, "label_encoder.json")),

		APIKey:              mustEnv("API_KEY", ""),
		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 0),
		APIQueueTimeoutMS:   mustEnvInt("API_QUEUE_TIMEOUT_MS", 2000),
		ServerReadTimeoutS:  mustEnvInt("SERVER_READ_TIMEOUT_SECONDS", 60),
		ServerWriteTimeoutS: mustEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 120),

		ModelBreakerEnabled:       mustEnvBool("MODEL_BREAKER_ENABLED", true),
		ModelBreakerMinRequests:   mustEnvInt("MODEL_BREAKER_MIN_REQUESTS", 10),
		ModelBreakerFailureRatio:  mustEnvFloat("MODEL_BREAKER_FAILURE_RATIO", 0.5),
		ModelBreakerOpenTimeoutMS: mustEnvInt("MODEL_BREAKER_OPEN_TIMEOUT_MS", 30000),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvList splits a comma-separated value, lowercasing entries and
// dropping leading dots so ".PDF" and "pdf" are the same extension.
func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(v, ",") {
		item := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EvaluationQueueName      string
	EvaluationLockKey        string
	EvaluationLockTTLSeconds int
	EvaluatorURL             string
	EvaluatorWebhookURL      string
	EvaluatorTimeoutSeconds  int

	LeaderboardCacheTTLSeconds int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:                  getEnv("API_PORT", "8080"),
		JWTKey:                   []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                   time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:                   getEnv("DB_HOST", "localhost"),
		DBPort:                   getEnv("DB_PORT", "5432"),
		DBUser:                   getEnv("DB_USER", "user"),
		DBPassword:               getEnv("DB_PASSWORD", "password"),
		DBName:                   getEnv("DB_NAME", "ml_arena_db"),
		DBSslMode:                getEnv("DB_SSLMODE", "disable"),
		RedisAddr:                getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:            getEnv("REDIS_PASSWORD", ""),
		RedisDB:                  getEnvAsInt("REDIS_DB", 0),
		EvaluationQueueName:      getEnv("EVALUATION_QUEUE_NAME", "evaluation_jobs_queue"),
		EvaluationLockKey:        getEnv("EVALUATION_LOCK_KEY", "evaluation_job_lock"),
		EvaluationLockTTLSeconds: getEnvAsInt("EVALUATION_LOCK_TTL_SECONDS", 300),
		EvaluatorURL:             getEnv("EVALUATOR_URL", "http://localhost:5002/evaluate"),
		EvaluatorWebhookURL:      getEnv("EVALUATOR_WEBHOOK_URL", "http://localhost:8080/api/v1/webhook/evaluation"),
		EvaluatorTimeoutSeconds:  getEnvAsInt("EVALUATOR_TIMEOUT_SECONDS", 60),

		LeaderboardCacheTTLSeconds: getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 30),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

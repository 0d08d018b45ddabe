package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GeminiModel  string

	FirestoreProjectID  string
	FirestoreDatabaseID string
	CredentialsPath     string

	JWTSecret string

	MetricsDBPath string
	ListenAddr    string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID environment variable not set")
	}

	databaseID := os.Getenv("FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		databaseID = "(default)"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	metricsDBPath := os.Getenv("METRICS_DB_PATH")
	if metricsDBPath == "" {
		metricsDBPath = "data/metrics.db"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	return &Config{
		GeminiAPIKey:        geminiAPIKey,
		GeminiModel:         geminiModel,
		FirestoreProjectID:  projectID,
		FirestoreDatabaseID: databaseID,
		// Empty means Application Default Credentials (e.g. on Cloud Run).
		CredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		JWTSecret:       jwtSecret,
		MetricsDBPath:   metricsDBPath,
		ListenAddr:      listenAddr,
	}, nil
}

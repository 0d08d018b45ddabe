package main

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"fitia-backend/internal/api"
	"fitia-backend/internal/auth"
	"fitia-backend/internal/chat"
	"fitia-backend/internal/config"
	"fitia-backend/internal/database"
	"fitia-backend/internal/llm"
	"fitia-backend/internal/metrics"
	"fitia-backend/internal/plan"
	"fitia-backend/internal/recipes"
	"fitia-backend/internal/store"
	"fitia-backend/internal/user"
)

func main() {
	// .env is optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	fsClient, err := firestore.NewClientWithDatabase(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabaseID, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firestore client: %v", err)
	}
	defer fsClient.Close()

	textGen, closeGen, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer closeGen()

	db, err := database.NewDB(cfg.MetricsDBPath)
	if err != nil {
		log.Fatalf("Failed to initialize metrics database: %v", err)
	}
	defer db.Close()
	metricsStore := metrics.NewStore(db.SQL)

	users := user.NewRepository(fsClient)
	planStore := store.NewFirestoreStore(fsClient)
	planSvc := plan.NewService(textGen)
	substituter := plan.NewSubstituter(planStore, recipes.Unimplemented{})
	assistant := chat.NewAssistant(textGen, substituter)
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	handler := api.NewHandler(
		users,
		planSvc,
		planStore,
		substituter,
		assistant,
		tokens,
		metricsStore,
		api.MetricsReporter{Store: metricsStore, DBPath: cfg.MetricsDBPath},
	)

	router := api.NewRouter(handler, tokens)

	log.Printf("Fitia backend listening on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stockledger/cmd"
	"stockledger/internal/core/container"
	"stockledger/internal/core/logger"
	"stockledger/internal/core/routes"
	"stockledger/internal/middleware"
	"stockledger/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	if len(os.Args) > 1 {
		cmd.Execute(ctx)
		return
	}

	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	rowStore, err := container.NewStoreFromEnv(ctx)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	// Fail fast on a mis-provisioned table rather than discovering the
	// column layout request by request.
	if err := store.ValidateSchemas(ctx, rowStore); err != nil {
		log.Fatalf("Schema validation failed: %v", err)
	}

	log.Println("Connected to the store successfully!")

	appContainer := container.NewAppContainer(rowStore, zapLogger)

	router := gin.Default()
	router.Use(middleware.RecoveryMiddleware())

	routes.RegisterPublicRoutes(router, appContainer)
	routes.RegisterProtectedRoutes(router, appContainer)
	routes.RegisterUtilityRoutes(router)

	if err := router.Run(os.Getenv("APP_HOST")); err != nil {
		panic(err)
	}
}

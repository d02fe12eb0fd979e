// @title INR99 Academy API
// @version 1.0
// @description Backend for the INR99 Academy e-learning platform.

// @contact.name API support
// @contact.email support@inr99.academy

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"inr99_academy_backend/internal/app"
	"inr99_academy_backend/internal/config"
	"inr99_academy_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}

package main

import (
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}

	if level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	ctx, err := context.NewCtx(
		&services.RedisService{},
		&services.StorageService{},
		&services.MonitoringService{},
		&services.MinIOService{},

		&services.OpenAIService{},
		&services.AIService{},

		&services.JWTService{},
		&services.AuthService{},
		&services.RateLimitService{},

		&services.UserService{},
		&services.LetterService{},
		&services.WorkflowService{},
		&services.MigrationService{},
		&services.AdminService{},
		&services.ExportService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service stopped")
		return
	}
}

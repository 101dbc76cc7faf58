package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/heartletter/letter_api/seed/seeders"
	"github.com/heartletter/letter_api/services"
	"github.com/heartletter/letter_api/services/repositories"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	var (
		seedType      = flag.String("type", "all", "Type of seeding: all, admin, demo")
		adminNickname = flag.String("admin", envOr("SEED_ADMIN_NICKNAME", "admin"), "Admin nickname")
		adminPassword = flag.String("admin-password", envOr("SEED_ADMIN_PASSWORD", "12345"), "Admin password (1-5 digits)")
		demoNickname  = flag.String("demo", "demo", "Demo user nickname")
		demoPassword  = flag.String("demo-password", "1234", "Demo user password (1-5 digits)")
		help          = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	redisSvc, err := services.NewRedisServiceFromEnv()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisSvc.Shutdown()

	storage := services.NewStorageService(repositories.NewBaseRepository(redisSvc.Store()))
	ctx := context.Background()

	admin := seeders.Credentials{Nickname: *adminNickname, Password: *adminPassword}
	demo := seeders.Credentials{Nickname: *demoNickname, Password: *demoPassword}

	switch *seedType {
	case "all":
		err = seeders.NewMainSeeder(storage).SeedAll(ctx, admin, demo)
	case "admin":
		_, err = seeders.NewAdminSeeder(storage).SeedAdmin(ctx, admin.Nickname, admin.Password)
	case "demo":
		err = seeders.NewDemoSeeder(storage).SeedDemo(ctx, demo.Nickname, demo.Password)
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'admin' or 'demo'", *seedType)
	}
	if err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func showHelp() {
	fmt.Println(`
Seeding tool for the letter API

Usage: go run ./seed [flags]

Flags:
  -type string            all, admin or demo (default "all")
  -admin string           admin nickname (SEED_ADMIN_NICKNAME, default "admin")
  -admin-password string  admin password (SEED_ADMIN_PASSWORD, default "12345")
  -demo string            demo nickname (default "demo")
  -demo-password string   demo password (default "1234")

The admin account only gets the admin role in tokens when its stored role
is admin or its nickname is listed in ADMIN_NICKNAMES.`)
}

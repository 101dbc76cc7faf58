package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/heartletter/letter_api/services"
	"github.com/heartletter/letter_api/services/repositories"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	var (
		name    = flag.String("name", "", "Migration to run")
		dryRun  = flag.Bool("dry-run", false, "Count and log without writing")
		verbose = flag.Bool("v", false, "Log every document")
	)
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	redisSvc, err := services.NewRedisServiceFromEnv()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisSvc.Shutdown()

	storage := services.NewStorageService(repositories.NewBaseRepository(redisSvc.Store()))
	migrations := services.NewMigrationService(storage)

	if *name == "" {
		fmt.Fprintf(os.Stderr, "usage: migrate -name=<%s> [-dry-run]\n", strings.Join(migrations.Names(), "|"))
		os.Exit(2)
	}

	report, err := migrations.Run(context.Background(), *name, *dryRun)
	if report != nil {
		log.WithFields(log.Fields{
			"scanned":  report.Scanned,
			"migrated": report.Migrated,
			"skipped":  report.Skipped,
			"failed":   report.Failed,
			"duration": report.Duration,
		}).Info("Report")
		for _, e := range report.Errors {
			log.Warn(e)
		}
	}
	if err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
}

// Applies the embedded schema migrations: migrate [up|down|version]
package main

import (
	"context"
	"os"

	"attendance.service/internal/bootstrap"
	"attendance.service/internal/config"
	"attendance.service/pkg/database"
	"attendance.service/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}
	logger.Setup(cfg.IsLocalDev)

	action := database.MigrateUp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if err := bootstrap.MigrateDatabase(context.Background(), cfg, action); err != nil {
		log.Fatal().Err(err).Str("action", action).Msg("Migration failed")
	}
}

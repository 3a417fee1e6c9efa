package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lingoleap/learning-api/internal/infrastructure/config"
	mongostore "github.com/lingoleap/learning-api/internal/infrastructure/db/mongo"
	"github.com/lingoleap/learning-api/pkg/logger"
)

// loadConfig reads the dotenv file named by --env-file, then the environment.
// A missing dotenv file is not an error; real environment variables win.
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, zerolog.Nop(), fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: appName,
	})
	return cfg, log, nil
}

func connectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.URI,
		Database: cfg.Database,
		AppName:  appName,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

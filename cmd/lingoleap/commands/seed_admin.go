package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lingoleap/learning-api/internal/core/service"
	mongostore "github.com/lingoleap/learning-api/internal/infrastructure/db/mongo"
	"github.com/lingoleap/learning-api/pkg/logger"
)

func newSeedAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Args:  cobra.NoArgs,
		Short: "Create the admin account if it does not exist",
		Long: `Create an admin account from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD.
Flags override the environment. Existing accounts are left untouched.`,
		RunE: runSeedAdmin,
	}

	cmd.Flags().String("email", "", "admin email (overrides SEED_ADMIN_EMAIL)")
	cmd.Flags().String("password", "", "admin password (overrides SEED_ADMIN_PASSWORD)")
	cmd.Flags().String("name", "", "admin display name (overrides SEED_ADMIN_NAME)")

	return cmd
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if v, _ := cmd.Flags().GetString("email"); v != "" {
		seed.AdminEmail = v
	}
	if v, _ := cmd.Flags().GetString("password"); v != "" {
		seed.AdminPassword = v
	}
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		seed.AdminName = v
	}
	if seed.AdminPassword == "" {
		return errors.New("seed-admin: SEED_ADMIN_PASSWORD or --password is required")
	}

	ctx := cmd.Context()
	client, db, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(ctx) }()

	users := service.NewUserService(mongostore.NewUserRepository(db), nil, cfg.Auth.BcryptCost, logger.Component("seed"))
	created, err := users.EnsureAdmin(ctx, seed.AdminEmail, seed.AdminPassword, seed.AdminName)
	if err != nil {
		return err
	}

	if created {
		log.Info().Str("email", seed.AdminEmail).Msg("admin account created")
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", seed.AdminEmail)
		return nil
	}
	log.Info().Str("email", seed.AdminEmail).Msg("admin account already exists")
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", seed.AdminEmail)
	return nil
}

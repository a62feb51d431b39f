package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"podcast-catalog/internal/config"
	"podcast-catalog/internal/infrastructure/database"
	"podcast-catalog/pkg/logger"
)

// commandContext giữ config và mở DB theo yêu cầu của từng subcommand
type commandContext struct {
	envFile string
	cfg     *config.Config
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	// thiếu .env không phải lỗi
	_ = godotenv.Load(c.envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	c.cfg = cfg
	return cfg, nil
}

// openDB trả về DB đã connect; caller phải Close
func (c *commandContext) openDB(ctx context.Context) (*database.PostgresDB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	dbConfig, err := config.LoadDatabaseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "podcastctl",
		Short:         "Operator tooling for the podcast catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env-file", ".env", "Path to a dotenv file")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newCheckDBCommand(ctx))
	rootCmd.AddCommand(newPodcastsCommand(ctx))

	return rootCmd
}

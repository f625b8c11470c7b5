package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/studypals/studypals/internal/config"
	"github.com/studypals/studypals/internal/db"
	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/repository/sqlite"
	"github.com/studypals/studypals/internal/services"
)

func newRecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute <user-id>",
		Short: "Rebuild and store a user's snapshot from the service database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := calculatorFromFlags(cmd)
			if err != nil {
				return err
			}

			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = config.Load().DBPath
			}

			ctx := logger.NewContext(context.Background(), logger.Default())
			database, err := db.Open(ctx, dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()

			svc := services.NewAnalyticsService(
				sqlite.NewSessionRepository(database.DB),
				sqlite.NewQuizRepository(database.DB),
				sqlite.NewReviewRepository(database.DB),
				sqlite.NewAnalyticsRepository(database.DB),
				calc,
			)
			snapshot, err := svc.Recompute(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snapshot)
		},
	}
	cmd.Flags().String("db", "", "Path to the SQLite database (overrides DB_PATH)")
	return cmd
}

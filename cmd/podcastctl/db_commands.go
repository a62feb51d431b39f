package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"podcast-catalog/internal/domains/user"
	userRepo "podcast-catalog/internal/domains/user/repository"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := db.Migrate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "applied %s\n", name)
			}
			return nil
		},
	}
}

func newCheckDBCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Verify database connectivity and list tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			tables, err := db.ListTables(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Database connection successful")
			if len(tables) == 0 {
				fmt.Fprintln(out, "No tables found in schema public")
			} else {
				rows := make([][]string, 0, len(tables))
				for _, name := range tables {
					rows = append(rows, []string{name})
				}
				fmt.Fprintln(out, renderTable([]string{"Table"}, rows, nil))
			}

			if err := writeUserCount(cmd.Context(), out, userRepo.NewPostgresRepository(db.Pool)); err != nil {
				return err
			}

			stats, err := db.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Idle", "Acquired", "Max", "Avg acquire"},
				[][]string{{
					strconv.Itoa(int(stats.TotalConns)),
					strconv.Itoa(int(stats.IdleConns)),
					strconv.Itoa(int(stats.AcquiredConns)),
					strconv.Itoa(int(stats.MaxConns)),
					stats.AvgAcquire().String(),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func writeUserCount(ctx context.Context, out io.Writer, repo user.Repository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Registered users: %d\n", n)
	return err
}

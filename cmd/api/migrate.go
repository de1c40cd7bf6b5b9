package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			cfg, lg, db, err := setup(cmd)
			if err != nil {
				return err
			}
			defer lg.Sync()
			defer db.Close()

			ctx := cmd.Context()
			sugar := lg.Sugar()
			switch action {
			case "up":
				err = database.Migrate(ctx, db.DB, cfg.Database.Driver, sugar)
			case "down":
				err = database.Rollback(ctx, db.DB, cfg.Database.Driver, sugar)
			}
			if err != nil {
				return err
			}
			v, err := database.Version(ctx, db.DB, cfg.Database.Driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
}

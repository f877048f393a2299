package cli

import (
	"errors"
	"fmt"
	"strings"

	"petclinic/internal/adapters/storage/sqlstore"
	"petclinic/internal/platform/migrations"

	"github.com/spf13/cobra"
)

var errNoDSN = errors.New("DB_DSN is required to run migrations")

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or revert the embedded SQL schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.DB.DSN) == "" {
				return errNoDSN
			}

			db, err := sqlstore.Open(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if args[0] == "down" {
				err = migrations.Down(db.DB, cfg.DB.Driver)
			} else {
				err = migrations.Up(db.DB, cfg.DB.Driver)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s applied (%s)\n", args[0], cfg.DB.Driver)
			return nil
		},
	}
}

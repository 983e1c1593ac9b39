package cli

import (
	"fmt"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/infra/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			inj := container()
			cfg, err := invoke[*config.Config](inj)
			if err != nil {
				return err
			}
			// the DB provider migrates on first use
			cfg.Database.AutoMigrate = true
			gdb, err := invoke[*gorm.DB](inj)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(gdb) }()
			fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess("schema is up to date"))
			return nil
		},
	}
}

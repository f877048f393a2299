// Package cli arma el binario petclinic con cobra.
package cli

import (
	"fmt"
	"os"

	"petclinic/internal/platform/config"
	"petclinic/internal/platform/logger"

	"github.com/spf13/cobra"
)

// Version se pisa en build con -ldflags "-X petclinic/internal/cli.Version=...".
var Version = "dev"

var configPath string

// NewRootCmd arma el comando raíz con todos los subcomandos.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "petclinic",
		Short: "petclinic - veterinary clinic services and gateway",
		Long:  "petclinic runs each clinic service, the API gateway or the whole backend in one process, and applies database migrations.",
	}
	cmd.SilenceUsage = true
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default $PETCLINIC_CONFIG)")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute corre el CLI y sale con 1 si hubo error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func newLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.AppName,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "petclinic %s\n", Version)
		},
	}
}

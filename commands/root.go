package commands

import (
	"fmt"
	"log/slog"
	"os"

	"Gin_postgres_redis_rental_kiosk/config"
	"Gin_postgres_redis_rental_kiosk/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile  string
	logLevel string

	cfg      *config.Config
	logger   *slog.Logger
	closeLog func()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Self-service rental kiosk server",
	Long: `kiosk runs the rental kiosk back end: the touchscreen API for renting and
queueing items, and the admin API for inventory, users and rental history.

Without a subcommand it starts the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		} else {
			config.LoadEnv()
		}

		c, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		l, cleanup, err := logging.New(c.Log.Level, c.Log.File)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		cfg, logger, closeLog = c, l, cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			closeLog()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of ./.env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

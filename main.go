package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"saltbath/config"
	"saltbath/database"
	"saltbath/loader"
)

var (
	configPath string
	verbose    bool
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "saltbath",
	Short: "Salt-bath inspection record store and acceptance report generator",
	Long: `saltbath keeps the salt-bath case-hardening inspection results in one table per
production year and builds acceptance reports for lists of part numbers.

Part numbers are typed the way they are printed on the sheets: a two digit year
followed by the serials of that year, e.g. "24 07698 13456 25 19778".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)

		config.SetConfigPath(configPath)
		if _, err := config.LoadConfig(); err != nil {
			zap.S().Warnf("Failed to load config file: %v. Using defaults.", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./saltbath_config.json", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newArchiveCmd(),
		newEntryCmd(),
		newCheckCmd(),
		newSearchCmd(),
		newReportCmd(),
		newImportLegacyCmd(),
		newExportCmd(),
		newBatchesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens the configured database and makes sure the schema is in place.
func openStore() (*sqlx.DB, error) {
	cfg := config.GetConfig()
	zap.S().Infof("Connecting to database %s...", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := loader.InitDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}
	return db, nil
}

// Package cmd holds the techlympics command line: the API server and its maintenance tasks.
package cmd

import (
	"techlympics/config"
	"techlympics/database"
	"techlympics/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "techlympics",
	Short: "Techlympics event management API",
	Long: `techlympics serves the Techlympics REST API and runs its maintenance tasks.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		if logLevel != "" {
			logger.SetLevel(logLevel)
		}
	},
}

// openDB connects to the configured database without migrating it
var openDB = func() (*gorm.DB, error) {
	dialector, err := database.Dialector()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(dialector)
	if err != nil {
		return nil, err
	}
	database.DB = db
	return db, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, cleanupCertsCmd)
}

// Execute runs the command selected by the process arguments
func Execute() error {
	return rootCmd.Execute()
}

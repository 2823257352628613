package cmd

import (
	"fmt"

	"techlympics/config"
	"techlympics/logger"
	"techlympics/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cleanupDryRun bool
	cleanupDir    string
)

var cleanupCertsCmd = &cobra.Command{
	Use:   "cleanup-certs",
	Short: "Remove generated certificate PDFs no certificate references",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cleanupDir
		if dir == "" {
			dir = config.UploadsDir
		}
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}

		files, err := services.CleanupCertificateFiles(db, dir, cleanupDryRun)
		if err != nil {
			return fmt.Errorf("cleanup %s: %w", dir, err)
		}

		out := cmd.OutOrStdout()
		for _, f := range files {
			fmt.Fprintln(out, f)
		}
		verb := "Removed"
		if cleanupDryRun {
			verb = "Would remove"
		}
		fmt.Fprintf(out, "%s %d orphaned certificate file(s)\n", verb, len(files))
		logger.Log.WithFields(logrus.Fields{
			"dir":     dir,
			"count":   len(files),
			"dry_run": cleanupDryRun,
		}).Info("Certificate cleanup finished")
		return nil
	},
}

func init() {
	cleanupCertsCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list the orphaned files without deleting them")
	cleanupCertsCmd.Flags().StringVar(&cleanupDir, "dir", "", "directory of generated certificates (defaults to UPLOADS_DIR)")
}

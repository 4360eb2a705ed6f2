package cmd

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jvre/memberd/account"
	"github.com/jvre/memberd/config"
	"github.com/jvre/memberd/database"
	"github.com/jvre/memberd/locale"
	"github.com/jvre/memberd/notify/email"
)

var purgeCmdFlags struct {
	OlderThanDays int
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove pending accounts that never confirmed",
	Long:  `Remove accounts that are still waiting for confirmation and are older than the given number of days, together with their levels and custom fields.`,
	Run:   runPurge,
}

func init() {
	purgeCmd.Flags().IntVar(&purgeCmdFlags.OlderThanDays, "older-than", 0, "Age in days after which a pending account is removed (default: registration.purge_after_days)")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	days := purgeCmdFlags.OlderThanDays
	if days <= 0 {
		days = cfg.Registration.PurgeAfterDays
	}

	svc := account.New(
		db,
		email.New(cfg.Email),
		email.NewStore(cfg.Email.TemplatesDir),
		locale.NewPrinter(cfg.Locale),
		cfg.ServerURL,
	)

	deleted, err := svc.PurgeUnconfirmed(cmd.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		log.Fatalf("purge failed: %v", err)
	}

	log.Info("purge completed", "deleted", deleted, "older_than_days", days)
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jvre/memberd/account"
	"github.com/jvre/memberd/api"
	"github.com/jvre/memberd/config"
	"github.com/jvre/memberd/database"
	"github.com/jvre/memberd/locale"
	"github.com/jvre/memberd/notify/email"
	"github.com/jvre/memberd/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the memberd server",
	Long:  `Start the memberd server to handle account registrations and confirmations.`,
	Example: `memberd serve --config config.yml
memberd serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	svc := account.New(
		db,
		email.New(cfg.Email),
		email.NewStore(cfg.Email.TemplatesDir),
		locale.NewPrinter(cfg.Locale),
		cfg.ServerURL,
	)

	sched, err := setupScheduler(cfg, svc)
	if err != nil {
		log.Fatalf("failed to set up scheduler: %v", err)
	}
	sched.Start()

	server, err := api.New(cfg, db, svc, sched, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	// Start the API server in a goroutine
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		if err := server.Run(); err != nil {
			log.Error("API server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("memberd started successfully")
	<-c
	log.Info("shutting down gracefully...")

	if err := sched.Stop(); err != nil {
		log.Error("failed to shut down scheduler", "error", err)
	}
	if err := db.Close(); err != nil {
		log.Error("failed to close database", "error", err)
	}

	// Give time for graceful shutdown
	time.Sleep(2 * time.Second)
}

// setupScheduler wires the stale-registration purge job when enabled.
func setupScheduler(cfg *config.Config, svc *account.Service) (*scheduler.Scheduler, error) {
	sched, err := scheduler.New()
	if err != nil {
		return nil, err
	}

	if cfg.Registration.PurgeEnabled {
		olderThan := time.Duration(cfg.Registration.PurgeAfterDays) * 24 * time.Hour
		err = sched.AddCronJob(
			"purge-unconfirmed",
			"Purge unconfirmed registrations",
			cfg.Registration.PurgeSchedule,
			func(ctx context.Context) error {
				_, err := svc.PurgeUnconfirmed(ctx, olderThan)
				return err
			},
		)
		if err != nil {
			return nil, err
		}
	}

	return sched, nil
}

// Command convctl runs the ingestion pipeline and the audit store from the
// command line, against the same database the server uses.
package main

import (
	"convenios-dashboard/internal/config"
	"convenios-dashboard/internal/db"
	"convenios-dashboard/internal/logging"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app carries what every subcommand needs once storage is open.
type app struct {
	logger      *zap.Logger
	db          *gorm.DB
	concurrency int
	output      string
	verbose     bool

	// open connects to storage before a subcommand runs
	open func() error
}

func (a *app) connect() error {
	config.LoadConfig()
	cfg := config.AppConfig

	a.logger = zap.NewNop()
	if a.verbose {
		logger, err := logging.New(cfg.Environment)
		if err != nil {
			return err
		}
		a.logger = logger
	} else {
		// production level keeps gorm from echoing every statement
		cfg.Environment = "production"
	}

	if err := db.ConnectDb(cfg, a.logger); err != nil {
		return err
	}
	if err := db.Migrate(db.AppDb, a.logger); err != nil {
		return err
	}
	a.db = db.AppDb
	a.concurrency = cfg.ParseConcurrency
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convctl",
		Short: "Ingest convênio spreadsheets and inspect the edit history",
		Long: `convctl runs the spreadsheet consolidation offline and gives access to
the edition and history stores shared with the dashboard server.

Storage is configured with the same environment variables as the server
(DB_DRIVER, SQLITE_PATH, DB_HOST, ...).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseOutputFormat(a.output); err != nil {
				return err
			}
			return a.open()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format: table, json, yaml")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log ingestion and SQL details")

	cmd.AddCommand(newIngestCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newRebuildCmd(a))
	return cmd
}

func main() {
	a := &app{}
	a.open = a.connect

	err := newRootCmd(a).Execute()
	if a.logger != nil {
		db.CloseDb(a.logger)
		a.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

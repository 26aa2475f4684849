// Command report writes the daily chat CSV report for one day to a file.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chatbot/pkg/config"
	"chatbot/pkg/database"
	"chatbot/pkg/logger"
	"chatbot/pkg/repository"
	"chatbot/pkg/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	date   string
	outDir string
	driver string
	dsn    string
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the chats of one day as CSV",
		Long:  `Export every chat created on the given local date (default today) as daily_chat_report_<date>.csv.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, rows, err := run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d chats to %s\n", rows, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "day to export as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "reports", "output directory")
	cmd.Flags().StringVar(&opts.driver, "db-driver", "", "database driver (default DB_DRIVER)")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "database DSN (default DB_DSN)")
	return cmd
}

func ensureDir(p string) error {
	return os.MkdirAll(p, 0o755)
}

// run builds the report for opts.date and returns the written path and row count.
func run(ctx context.Context, opts options) (string, int, error) {
	day := time.Now()
	if opts.date != "" {
		d, err := time.ParseInLocation("2006-01-02", opts.date, time.Local)
		if err != nil {
			return "", 0, fmt.Errorf("invalid --date %q: %w", opts.date, err)
		}
		day = d
	}
	if opts.driver == "" {
		opts.driver = config.DBDriver
	}
	if opts.dsn == "" {
		opts.dsn = config.DBDSN
	}

	db, err := database.Open(opts.driver, opts.dsn)
	if err != nil {
		return "", 0, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	analytics := services.NewAnalyticsService(
		repository.NewActivityRepository(db),
		repository.NewChatRepository(db),
		repository.NewThreadRepository(db),
		repository.NewUserRepository(db),
	)
	report, err := analytics.BuildReport(ctx, day)
	if err != nil {
		return "", 0, err
	}

	if err := ensureDir(opts.outDir); err != nil {
		return "", 0, err
	}
	path := filepath.Join(opts.outDir, report.Filename)
	if err := os.WriteFile(path, report.Content, 0o644); err != nil {
		return "", 0, err
	}
	return path, report.Rows, nil
}

func main() {
	config.Load()
	if err := logger.Init(config.IsProduction, config.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.L().Error("report failed", zap.Error(err))
		os.Exit(1)
	}
}

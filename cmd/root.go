// Package cmd implements the jules-notify CLI.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amclean/jules-notify/config"
	"github.com/amclean/jules-notify/gmail"
	"github.com/amclean/jules-notify/monitor"
	"github.com/amclean/jules-notify/notify"
)

var (
	flagOnce bool
	flagTest bool
)

var rootCmd = &cobra.Command{
	Use:   "jules-notify",
	Short: "Monitor Gmail for Jules notifications and push them to your phone",
	Long: `jules-notify polls Gmail for notification emails from Google Jules,
extracts the task status, repository, and link, sends a push notification
via ntfy, and cleans up the processed email.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&flagOnce, "once", false, "check Gmail once and exit (no continuous loop)")
	rootCmd.Flags().BoolVar(&flagTest, "test", false, "send a test notification to verify ntfy is working")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	notifier := notify.New(cfg.NtfyTopic, cfg.NtfyServer)
	ctx := cmd.Context()

	if flagTest {
		fmt.Println("Sending test notification...")
		if err := notifier.SendTest(ctx); err != nil {
			return fmt.Errorf("test notification failed: %w", err)
		}
		fmt.Println("Test notification sent! Check your phone.")
		return nil
	}

	fmt.Println(banner())

	filters, err := config.NewManager(cfg.FiltersPath)
	if err != nil {
		return fmt.Errorf("loading filters: %w", err)
	}

	client, err := gmail.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("initializing Gmail client (is credentials.json present?): %w", err)
	}

	m := monitor.New(cfg, filters, client, notifier)

	if flagOnce {
		n, err := m.CheckOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Done. Processed %d email(s).\n", n)
		return nil
	}

	m.Run(ctx)
	fmt.Printf("Goodbye! Processed %d email(s) this session.\n", m.Processed())
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// Execute runs the root command under the given context.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

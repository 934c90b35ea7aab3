// Package main is the entry point for the Shlink Dashboard TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/shlink-dashboard-tui/internal/app"
	"github.com/j-veylop/shlink-dashboard-tui/internal/config"
	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/services"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/tabs/overview"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/tabs/servers"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/tabs/shorturls"
	"github.com/j-veylop/shlink-dashboard-tui/internal/ui/tabs/tags"
	"github.com/j-veylop/shlink-dashboard-tui/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shlink-tui",
		Short: "Terminal dashboard for Shlink servers",
		Long: `Shlink Dashboard TUI - live visit counters, short URLs and tags of your Shlink servers.

Keyboard Shortcuts:
  1-5             Switch between tabs (Overview, Short URLs, Tags, Servers, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  Enter           Select/confirm
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  SERVERS_PATH             Servers JSON file path
  DATABASE_PATH            SQLite database path
  LOG_PATH, LOG_LEVEL      Log file and level (debug, info, warn, error)
  VISITS_REFRESH_INTERVAL  Polling interval when real-time updates are off (default: 60s)
  REAL_TIME_UPDATES        Subscribe to Mercure when the server supports it (default: true)
  QR_DEFAULT_SIZE          QR code size in pixels (default: 300)
  QR_DEFAULT_FORMAT        png or svg (default: png)

The application looks for a .env file in the current directory and in the
configuration directory.`,
		Version:      version.GetVersion(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(
		newVersionCmd(),
		newServersCmd(),
		newQRCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// runTUI contains the main application logic, separated for cleaner error handling.
func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Init(cfg.LogPath, logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logCloser.Close()

	logger.Info("Starting", "version", version.GetVersion(), "servers", cfg.ServersPath)

	// Starts the servers file watcher and opens the history database.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Order must match the app.TabID constants.
	state := model.GetState()
	model.SetTabs([]app.Tab{
		overview.New(state),
		shorturls.New(state),
		tags.New(state),
		servers.New(state),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

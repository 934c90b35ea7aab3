package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/j-veylop/shlink-dashboard-tui/internal/config"
	"github.com/j-veylop/shlink-dashboard-tui/internal/qrcode"
	serversvc "github.com/j-veylop/shlink-dashboard-tui/internal/services/servers"
	"github.com/j-veylop/shlink-dashboard-tui/internal/shlink"
)

type qrFlags struct {
	format        string
	server        string
	serverVersion string
	size          int
	margin        int
}

func newQRCmd() *cobra.Command {
	var flags qrFlags

	cmd := &cobra.Command{
		Use:   "qr <short-url>",
		Short: "Print the QR code image URL of a short URL",
		Long: `Print the URL of the QR code image a Shlink server renders for a short URL.

The accepted parameters depend on the server version. Pass --server to ask a
configured server for its version, or --server-version to set it directly.
Without either, the latest server behavior is assumed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			opts := cfg.QROptions()
			if cmd.Flags().Changed("size") {
				opts.Size = flags.size
			}
			if cmd.Flags().Changed("margin") {
				opts.Margin = flags.margin
			}
			if cmd.Flags().Changed("format") {
				opts.Format = qrcode.ParseFormat(flags.format, opts.Format)
			}

			serverVersion := flags.serverVersion
			if flags.server != "" {
				serverVersion, err = fetchServerVersion(cmd.Context(), cfg, flags.server)
				if err != nil {
					return err
				}
			}
			if serverVersion == "" {
				serverVersion = "latest"
			}

			shortURL := strings.TrimRight(args[0], "/")
			fmt.Fprintln(cmd.OutOrStdout(), qrcode.BuildURL(shortURL, opts, shlink.QRCapabilities(serverVersion)))
			return nil
		},
	}

	cmd.Flags().IntVar(&flags.size, "size", 300, "image size in pixels")
	cmd.Flags().IntVar(&flags.margin, "margin", 0, "margin in pixels")
	cmd.Flags().StringVar(&flags.format, "format", "png", "image format, png or svg")
	cmd.Flags().StringVar(&flags.server, "server", "", "name or ID of a configured server to read the version from")
	cmd.Flags().StringVar(&flags.serverVersion, "server-version", "", "Shlink version of the server")
	cmd.MarkFlagsMutuallyExclusive("server", "server-version")
	return cmd
}

// fetchServerVersion asks a configured server for its version.
func fetchServerVersion(ctx context.Context, cfg *config.Config, ref string) (string, error) {
	svc, err := serversvc.New(cfg.ServersPath)
	if err != nil {
		return "", fmt.Errorf("failed to open servers: %w", err)
	}
	defer svc.Close()

	server, err := svc.Find(ref)
	if err != nil {
		return "", err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.HTTPTimeout)
	defer cancel()

	health, err := shlink.New(server, cfg.HTTPTimeout).Health(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to reach %s: %w", server.Name, err)
	}
	return health.Version, nil
}

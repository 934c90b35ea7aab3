package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/j-veylop/shlink-dashboard-tui/internal/config"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	serversvc "github.com/j-veylop/shlink-dashboard-tui/internal/services/servers"
)

func newServersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage Shlink server profiles",
		Long: `Manage the Shlink server profiles used by the dashboard.

Available subcommands:
  list    - List configured servers
  add     - Add a server
  remove  - Remove a server by name or ID
  select  - Connect to a server automatically on start
  import  - Import servers from a name,url,apiKey CSV file
  export  - Export servers as CSV`,
	}

	cmd.AddCommand(
		newServersListCmd(),
		newServersAddCmd(),
		newServersRemoveCmd(),
		newServersSelectCmd(),
		newServersImportCmd(),
		newServersExportCmd(),
	)
	return cmd
}

// withServers opens the profiles file for the duration of fn.
func withServers(fn func(svc *serversvc.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, err := serversvc.New(cfg.ServersPath)
	if err != nil {
		return fmt.Errorf("failed to open servers: %w", err)
	}
	defer svc.Close()

	return fn(svc)
}

func newServersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServers(func(svc *serversvc.Service) error {
				selected, _ := svc.Selected()
				writeServersTable(cmd.OutOrStdout(), svc.List(), selected.ID)
				return nil
			})
		},
	}
}

func writeServersTable(w io.Writer, list []models.Server, selectedID string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No servers configured. Add one with 'shlink-tui servers add'.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "NAME", "URL", "API KEY", "ID")
	for _, s := range list {
		marker := ""
		if s.ID == selectedID {
			marker = "*"
		}
		t.Row(marker, s.Name, s.NormalizedURL(), s.MaskedAPIKey(), s.ID)
	}
	fmt.Fprintln(w, t.Render())
}

func newServersAddCmd() *cobra.Command {
	var (
		server models.Server
		sel    bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServers(func(svc *serversvc.Service) error {
				added, err := svc.Add(server)
				if err != nil {
					return err
				}
				if sel {
					if err := svc.Select(added.ID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", added.Name, added.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&server.Name, "name", "", "server name")
	cmd.Flags().StringVar(&server.URL, "url", "", "server URL, like https://s.example.com")
	cmd.Flags().StringVar(&server.APIKey, "api-key", "", "API key")
	cmd.Flags().BoolVar(&sel, "select", false, "connect to this server on start")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("api-key")
	return cmd
}

func newServersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name-or-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a server by name or ID",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServers(func(svc *serversvc.Service) error {
				server, err := svc.Find(args[0])
				if err != nil {
					return err
				}
				if err := svc.Delete(server.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", server.Name)
				return nil
			})
		},
	}
}

func newServersSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <name-or-id>",
		Short: "Connect to a server automatically on start",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServers(func(svc *serversvc.Service) error {
				server, err := svc.Find(args[0])
				if err != nil {
					return err
				}
				if err := svc.Select(server.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", server.Name)
				return nil
			})
		},
	}
}

func newServersImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import servers from a name,url,apiKey CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withServers(func(svc *serversvc.Service) error {
				result, err := svc.Import(f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d servers, skipped %d duplicates\n",
					len(result.Imported), result.Skipped)
				return nil
			})
		},
	}
}

func newServersExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export servers as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			return withServers(func(svc *serversvc.Service) error {
				return svc.Export(w)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

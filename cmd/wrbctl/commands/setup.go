package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wr-burden-mcp-server/internal/setup"
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with a desktop client",
	}

	register := &cobra.Command{
		Use:   "register",
		Short: "Add the stdio MCP server to the desktop client configuration",
		Example: `  wrbctl setup register
  wrbctl setup register --binary /usr/local/bin/mcp-server-lite --presets /etc/wr-burden/presets.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			binary, _ := cmd.Flags().GetString("binary")
			presetSource, _ := cmd.Flags().GetString("presets")
			lang, _ := cmd.Flags().GetString("lang")

			path, err := setup.Register(setup.Options{
				ConfigPath:   configPath,
				BinaryPath:   binary,
				PresetSource: presetSource,
				Locale:       lang,
			})
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"config": path, "server": setup.ServerName})
			}
			pterm.Success.Printfln("Registered %s in %s", setup.ServerName, path)
			pterm.Info.Println("Restart the desktop client to load the server")
			return nil
		},
	}
	register.Flags().String("binary", "", "Path to the MCP server binary (default: search PATH)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the MCP server is registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			st, err := setup.GetStatus(configPath)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), st)
			}

			pterm.Info.Printfln("Client config: %s", st.ConfigPath)
			if st.Registered {
				pterm.Success.Printfln("Registered: %s", st.ServerPath)
				pterm.Printfln("  Presets: %s", orDash(st.PresetSource))
				pterm.Printfln("  Locale:  %s", orDash(st.Locale))
			}
			for _, issue := range st.Issues {
				pterm.Warning.Println(issue)
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "Desktop client config file (default: platform location)")
	cmd.AddCommand(register, status)
	return cmd
}

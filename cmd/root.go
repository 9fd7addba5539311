package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mcp-calendar application
var rootCmd = &cobra.Command{
	Use:   "mcp-calendar",
	Short: "MCP server for Google Calendar and openrouteservice",
	Long: `mcp-calendar exposes a Google Calendar and an openrouteservice account to
AI assistants through the Model Context Protocol.

Tools:
  - get_events, get_event, add_event, update_event, delete_event
  - get_distance_and_time, get_coordinates

Run "mcp-calendar auth" once to obtain a refresh token, then "mcp-calendar serve".`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-calendar version %s\n" .Version}}`)

	// MCP hosts launch the binary without arguments and talk over stdio.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

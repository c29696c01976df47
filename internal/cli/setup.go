package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heart-risk-mcp-server/internal/setup"
)

var (
	setupConfigPath   string
	setupBinaryPath   string
	setupArtifactsDir string
	setupServerConfig string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Integrate the MCP server with AI assistants",
	// setup never loads the model
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return checkOutputFormat()
	},
}

var setupClaudeCmd = &cobra.Command{
	Use:   "claude-desktop",
	Short: "Register the heart-risk MCP server with Claude Desktop",
	Long: `Adds or updates the "heart-risk" entry under mcpServers in the Claude
Desktop configuration file. Other entries are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runSetupClaude,
}

var setupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the Claude Desktop registration",
	Args:  cobra.NoArgs,
	RunE:  runSetupStatus,
}

func init() {
	setupCmd.PersistentFlags().StringVar(&setupConfigPath, "claude-config", "", "Claude Desktop config file (detected when empty)")
	setupClaudeCmd.Flags().StringVar(&setupBinaryPath, "binary", "", "path to the mcp-server binary (searched when empty)")
	setupClaudeCmd.Flags().StringVar(&setupArtifactsDir, "artifacts-dir", "", "model artifacts directory passed to the server")
	setupClaudeCmd.Flags().StringVar(&setupServerConfig, "server-config", "", "config.yaml passed to the server")

	setupCmd.AddCommand(setupClaudeCmd)
	setupCmd.AddCommand(setupStatusCmd)
	rootCmd.AddCommand(setupCmd)
}

func runSetupClaude(cmd *cobra.Command, _ []string) error {
	path, err := setup.ConfigureClaudeDesktop(setup.Options{
		ConfigPath:   setupConfigPath,
		BinaryPath:   setupBinaryPath,
		ArtifactsDir: setupArtifactsDir,
		ConfigFile:   setupServerConfig,
	})
	if err != nil {
		return fmt.Errorf("configuring Claude Desktop: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", setup.ServerName, path)
	fmt.Fprintln(cmd.OutOrStdout(), "Restart Claude Desktop to load the server.")
	return nil
}

func runSetupStatus(cmd *cobra.Command, _ []string) error {
	path := setupConfigPath
	if path == "" {
		var err error
		if path, err = setup.DefaultClaudeDesktopConfigPath(); err != nil {
			return err
		}
	}

	status, err := setup.GetStatus(path)
	if err != nil {
		return err
	}
	if outputFormat == outputJSON {
		return printJSON(cmd, status)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config:     %s\n", status.ConfigPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Configured: %t\n", status.Configured)
	if status.ServerPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Server:     %s\n", status.ServerPath)
	}
	if status.ArtifactsDir != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Artifacts:  %s\n", status.ArtifactsDir)
	}
	for _, issue := range status.Issues {
		fmt.Fprintf(cmd.OutOrStdout(), "Issue:      %s\n", issue)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/cli"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/console"
	"github.com/Bartua1/Power-Apps-Canvas-App-Agentic-AI-Generation-Code-Reviewer/pkg/constants"
	"github.com/spf13/cobra"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

// Global flags
var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   constants.CLIName + " [flags] <file|dir|glob>...",
	Short: "Static checks for Power Apps canvas YAML",
	Long: `Validate Power Apps canvas YAML documents for mistakes typical of generated code.

Every mapping key in a document is checked for identifiers containing spaces,
renamed or non-existent properties, and values that look like formulas but lack
the '=' prefix. Galleries must declare a Variant and GroupContainers should
set their corner radii and DropShadow explicitly.

Arguments may be files, directories (searched for *.yaml and *.yml) or
doublestar patterns such as 'src/**/*.pa.yaml'.

Rule tables can be extended with a ` + constants.ConfigFileName + ` file in the working directory
or the file given with --config.

Examples:
  ` + constants.CLIName + ` src/Screens/Home.pa.yaml
  ` + constants.CLIName + ` --strict 'src/**/*.pa.yaml'
  ` + constants.CLIName + ` --format json src/
  ` + constants.CLIName + ` --watch src/`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		strict, _ := cmd.Flags().GetBool("strict")
		watch, _ := cmd.Flags().GetBool("watch")

		opts := cli.LintOptions{
			ConfigPath: configPath,
			Format:     format,
			Strict:     strict,
			Verbose:    verbose,
			Out:        cmd.OutOrStdout(),
			Err:        cmd.ErrOrStderr(),
		}

		if watch {
			return cli.WatchAndLint(cmd.Context(), args, opts)
		}
		return cli.RunLint(args, opts)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the linter as an MCP tool over stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing the ` + cli.LintToolName + ` tool.

The tool accepts either a 'path' to a document or its YAML 'content' and returns
the text report followed by the JSON result, so an agent generating canvas apps
can check its own output before handing it over.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunMCPServer(cmd.Context(), configPath)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.CLIName, cli.GetVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with source excerpts")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default "+constants.ConfigFileName+" when present)")

	rootCmd.Flags().String("format", cli.FormatText, "Output format: text or json")
	rootCmd.Flags().Bool("strict", false, "Fail on warnings as well as errors")
	rootCmd.Flags().BoolP("watch", "w", false, "Re-lint documents when they change")

	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitCode maps the result of a command to the process exit status and
// prints the error unless it only signals failed validation
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, cli.ErrValidationFailed) {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	}
	return 1
}

func main() {
	// Set version information in the CLI package
	cli.SetVersionInfo(version)

	os.Exit(exitCode(rootCmd.ExecuteContext(context.Background())))
}

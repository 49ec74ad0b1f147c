package cli

import (
	"github.com/spf13/cobra"

	"github.com/pctx-dev/pctx/pkg/cli/internal/commands"
)

const version = "0.1.0"

// Root returns the root command for the pctx CLI.
func Root() *cobra.Command {
	return rootCmd(version)
}

func rootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pctx",
		Short: "PCTX - a code-mode MCP gateway",
		Long: `PCTX connects to a set of upstream Model Context Protocol servers and
re-presents their tool catalogs as a single typed TypeScript API, letting a
model submit short programs instead of chaining individual tool calls.`,
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&commands.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.AddCommand(commands.GetSubCommands()...)

	return rootCmd
}

const helpTemplate = `{{with (or .Long .Short)}}{{ . | trimTrailingWhitespaces}}{{end}}

Usage:
  {{.UseLine}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (not .Hidden)}}
  {{rpad .Name .NamePadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasExample}}

Examples:
{{.Example | trimTrailingWhitespaces}}{{end}}{{if .HasLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}

`

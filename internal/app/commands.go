package app

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Every subcommand shares the global
// flags and resolves its settings through params.
func NewRootCommand(version, programName string, params RunParams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Ranked term search over local documents",
		Long:         "termdex indexes text documents on disk and ranks them against free-text queries using TF-IDF.",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{.Version}}
`)
	RegisterGlobalFlags(rootCmd.PersistentFlags())

	indexCommand := func(use, short string, args cobra.PositionalArgs, command IndexCommand) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return RunIndexCommand(cmd.Context(), params, cmd.Flags(), cmd.OutOrStdout(), args, command)
			},
		}
	}

	queryCmd := indexCommand("query <words...>", "Rank indexed documents against a query", cobra.MinimumNArgs(1), QueryCommand)
	RegisterQueryFlags(queryCmd.Flags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe(cmd.Context(), params, cmd.Flags(), version)
		},
	}
	RegisterServeFlags(serveCmd.Flags())

	rootCmd.AddCommand(
		indexCommand("add <path...>", "Index files and directories", cobra.MinimumNArgs(1), AddCommand),
		indexCommand("remove <path...>", "Remove files and directories from the index", cobra.MinimumNArgs(1), RemoveCommand),
		indexCommand("prune", "Remove documents whose files no longer exist", cobra.NoArgs, PruneCommand),
		indexCommand("refresh", "Re-index documents modified since they were indexed", cobra.NoArgs, RefreshCommand),
		indexCommand("info", "Show index statistics", cobra.NoArgs, InfoCommand),
		queryCmd,
		serveCmd,
	)

	return rootCmd
}

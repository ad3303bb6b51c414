package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/storytrack/storytrack/internal/config"
	sserver "github.com/storytrack/storytrack/internal/server"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
	noJournal  bool

	getenv func(string) string
}

// newRootCommand creates the root command for the storytrack CLI.
func newRootCommand() *cobra.Command {
	return buildRootCommand(os.Getenv)
}

// buildRootCommand creates the command tree reading the environment
// through getenv.
func buildRootCommand(getenv func(string) string) *cobra.Command {
	opts := &rootOptions{getenv: getenv}

	cmd := &cobra.Command{
		Use:   "storytrack",
		Short: "storytrack - user story tracker MCP server",
		Long: "An MCP server for tracking user stories: create, edit, move through\n" +
			"Unstarted, Started and Played, and reorder the Unstarted backlog.\n\n" +
			"Add to your AI tool's MCP config:\n\n" +
			"  {\n" +
			"    \"mcpServers\": {\n" +
			"      \"storytrack\": {\n" +
			"        \"command\": \"storytrack\",\n" +
			"        \"args\": [\"serve\"]\n" +
			"      }\n" +
			"    }\n" +
			"  }",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.Path()+")")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding stories.json (default ./"+config.DataDirName+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.noJournal, "no-journal", false, "disable the activity journal")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// load resolves the configuration: defaults, then the config file, then
// the environment, then flags.
func (o *rootOptions) load() (config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(o.getenv); err != nil {
		return cfg, err
	}

	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.noJournal {
		cfg.Journal = false
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "storytrack v%s\n", sserver.Version)
		},
	}
}

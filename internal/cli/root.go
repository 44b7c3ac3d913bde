package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Photosheet lays out identity photos on printable sheets",
		Long: `Photosheet converts passport and visa photo standards to exact pixel sizes,
fits a portrait to them, and packs as many copies as fit onto a sheet of paper
with cut guides, ready to print at true physical scale.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/photosheet/config.toml)")
	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "TOML file replacing the built-in size and paper catalog")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.fitCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.sheetCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/pkg/sink"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for photosheet.

Completions cover subcommands and flags, including the size standard and
paper codes of the active catalog.

To load completions:

Bash:
  $ source <(photosheet completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ photosheet completion bash > /etc/bash_completion.d/photosheet
  # macOS:
  $ photosheet completion bash > $(brew --prefix)/etc/bash_completion.d/photosheet

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ photosheet completion zsh > "${fpath[1]}/_photosheet"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ photosheet completion fish | source

  # To load completions for each session, execute once:
  $ photosheet completion fish > ~/.config/fish/completions/photosheet.fish

PowerShell:
  PS> photosheet completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> photosheet completion powershell > photosheet.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions attaches catalog-aware completions to every command
// under root that has the matching flags.
func (c *CLI) registerCompletions(root *cobra.Command) {
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		fs := cmd.Flags()
		if fs.Lookup("standard") != nil {
			_ = cmd.RegisterFlagCompletionFunc("standard", c.completeStandards)
		}
		if fs.Lookup("paper") != nil {
			_ = cmd.RegisterFlagCompletionFunc("paper", c.completePapers)
		}
		if fs.Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

func (c *CLI) completeStandards(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cat, err := c.catalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, s := range cat.Sizes() {
		if hasPrefixFold(s.Code, toComplete) {
			out = append(out, s.Code+"\t"+s.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) completePapers(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cat, err := c.catalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, p := range cat.Papers() {
		if hasPrefixFold(p.Code, toComplete) {
			out = append(out, p.Code+"\t"+p.Name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, f := range sink.Formats() {
		if hasPrefixFold(string(f), toComplete) {
			out = append(out, string(f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

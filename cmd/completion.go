package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// completeStatus suggests status values for --status flags and status arguments
func completeStatus(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, s := range validStatusArgs() {
		if strings.HasPrefix(s, strings.ToLower(toComplete)) {
			out = append(out, s)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeStatusArg completes the second positional argument of `<id> <status>` commands
func completeStatusArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeStatus(cmd, args, toComplete)
}

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for edmcli.

To load completions:

Bash:

  $ source <(edmcli completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ edmcli completion bash > /etc/bash_completion.d/edmcli
  # macOS:
  $ edmcli completion bash > $(brew --prefix)/etc/bash_completion.d/edmcli

Zsh:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ edmcli completion zsh > "${fpath[1]}/_edmcli"

Fish:

  $ edmcli completion fish > ~/.config/fish/completions/edmcli.fish

PowerShell:

  PS> edmcli completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			err = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			err = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		if err != nil {
			cmd.PrintErrf("Error generating completion: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
	memberStatusCmd.ValidArgsFunction = completeStatusArg
	groupStatusCmd.ValidArgsFunction = completeStatusArg
}

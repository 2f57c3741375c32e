package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell
// completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mother-skills.

To load completions:

Bash:
  $ source <(mother-skills completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ mother-skills completion bash > /etc/bash_completion.d/mother-skills
  # macOS:
  $ mother-skills completion bash > $(brew --prefix)/etc/bash_completion.d/mother-skills

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ mother-skills completion zsh > "${fpath[1]}/_mother-skills"

Fish:
  $ mother-skills completion fish | source

  # To load completions for each session, execute once:
  $ mother-skills completion fish > ~/.config/fish/completions/mother-skills.fish

PowerShell:
  PS> mother-skills completion powershell | Out-String | Invoke-Expression
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
}

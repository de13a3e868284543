package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the shell completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mjcfutil.

To load completions:

Bash:
  $ source <(mjcfutil completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ mjcfutil completion bash > /etc/bash_completion.d/mjcfutil
  # macOS:
  $ mjcfutil completion bash > $(brew --prefix)/etc/bash_completion.d/mjcfutil

Zsh:
  $ source <(mjcfutil completion zsh)

  # To load completions for each session, execute once:
  $ mjcfutil completion zsh > "${fpath[1]}/_mjcfutil"

Fish:
  $ mjcfutil completion fish | source

  # To load completions for each session, execute once:
  $ mjcfutil completion fish > ~/.config/fish/completions/mjcfutil.fish

PowerShell:
  PS> mjcfutil completion powershell | Out-String | Invoke-Expression
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
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}

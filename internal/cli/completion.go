package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for anchorlayout.

Completions cover scene files (*.toml) for solve, render, graph and watch,
optimization level names for --level (for example "standard" or
"direct|chain"), and output formats for render and graph --format.

Bash:
  $ source <(anchorlayout completion bash)

Zsh:
  $ anchorlayout completion zsh > "${fpath[1]}/_anchorlayout"

Fish:
  $ anchorlayout completion fish > ~/.config/fish/completions/anchorlayout.fish

PowerShell:
  PS> anchorlayout completion powershell | Out-String | Invoke-Expression

Start a new shell afterwards, then try:
  $ anchorlayout solve examples/<TAB>
  $ anchorlayout render login.toml --level <TAB>
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}

	return cmd
}

// completeScenes offers scene files as positional arguments.
func completeScenes(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeLevels offers level presets and, after a '|', the remaining
// optimization names so combined levels can be built up.
func completeLevels(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := strings.Split(layout.OptimizeAll.String(), "|")
	i := strings.LastIndex(toComplete, "|")
	if i < 0 {
		return append([]string{"none", "standard", "all"}, names...), cobra.ShellCompDirectiveNoFileComp
	}
	prefix, used := toComplete[:i+1], strings.Split(toComplete[:i], "|")
	var out []string
	for _, n := range names {
		if !slices.Contains(used, n) {
			out = append(out, prefix+n)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeFormats offers the listed formats, continuing comma-separated lists.
func completeFormats(formats ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		i := strings.LastIndex(toComplete, ",")
		prefix, used := toComplete[:i+1], strings.Split(toComplete[:max(i, 0)], ",")
		var out []string
		for _, f := range formats {
			if !slices.Contains(used, f) {
				out = append(out, prefix+f)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

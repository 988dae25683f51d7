package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huimingz/autocommit-go/internal/config"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported LLM providers",
	Long:  `List every supported LLM provider with its default model, endpoint and API key variable.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		green := color.New(color.FgGreen)
		cyan := color.New(color.FgCyan)

		bold.Fprintln(out, "Supported Providers:")
		fmt.Fprintln(out)

		for _, name := range config.SupportedProviders() {
			p, _ := config.LookupProvider(name)

			if name == config.DefaultProvider {
				green.Fprintf(out, "  ✓ %s (default)\n", name)
			} else {
				fmt.Fprintf(out, "    %s\n", name)
			}

			cyan.Fprintf(out, "      Name:     %s\n", p.Description)
			cyan.Fprintf(out, "      Model:    %s\n", p.DefaultModel)
			if p.BaseURL != "" {
				cyan.Fprintf(out, "      Base URL: %s\n", p.BaseURL)
			}
			if len(p.KeyEnv) > 0 {
				cyan.Fprintf(out, "      API key:  %s\n", strings.Join(p.KeyEnv, ", "))
			} else {
				cyan.Fprintln(out, "      API key:  not required")
			}
			fmt.Fprintln(out)
		}
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

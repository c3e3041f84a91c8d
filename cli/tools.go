package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var toolsWithMCP bool

var toolsCmd = &cobra.Command{
	Use:   "tools [query]",
	Short: "List or search the available tools",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, appOptions{startMCP: toolsWithMCP})
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		matches := a.registry.Search(strings.Join(args, " "))
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no matching tools")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, m := range matches {
			phrases := a.dispatcher.Keywords().Phrases(m.Name)
			trigger := "-"
			if len(phrases) > 0 {
				trigger = phrases[0]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, trigger, m.Description)
		}
		return w.Flush()
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsWithMCP, "mcp", false, "start configured MCP servers and include their tools")
	rootCmd.AddCommand(toolsCmd)
}

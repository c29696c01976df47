package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/heart-risk-mcp-server/internal/presets"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in example patients",
	Long: `Lists the example patients that can be passed to
"heartrisk predict --preset ID".`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, _ []string) error {
	all := presets.All()
	if outputFormat == outputJSON {
		return printJSON(cmd, all)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, p := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Description)
	}
	return w.Flush()
}

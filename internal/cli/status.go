package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the model artifacts are loaded",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	status := predictor.Status()
	if outputFormat == outputJSON {
		return printJSON(cmd, status)
	}

	if status.Ready {
		fmt.Fprintln(cmd.OutOrStdout(), "Model:      ready")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Model:      unavailable")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Message:    %s\n", status.Message)
	if status.Diagnostic != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Diagnostic: %s\n", status.Diagnostic)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Classifier: %s\n", status.ModelPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Scaler:     %s\n", status.ScalerPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Metadata:   %s\n", status.MetadataPath)
	if status.Ready {
		fmt.Fprintf(cmd.OutOrStdout(), "Features:   %d\n", status.FeatureCount)
		fmt.Fprintf(cmd.OutOrStdout(), "Policy:     %s\n", status.CategoryPolicy)
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded at:  %s\n", status.LoadedAt.Format(time.RFC3339))
	}
	return nil
}

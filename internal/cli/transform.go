package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Show the feature vector the classifier receives",
	Long: `Builds the scaled, one-hot encoded feature vector for a patient, in the
order the classifier was trained on. Takes the same flags as predict.`,
	Args: cobra.NoArgs,
	RunE: runTransform,
}

func init() {
	addRecordFlags(transformCmd)
	rootCmd.AddCommand(transformCmd)
}

type namedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func runTransform(cmd *cobra.Command, _ []string) error {
	rec, err := recordFromFlags(cmd)
	if err != nil {
		return err
	}

	vec, diag := predictor.Transform(cmd.Context(), rec)
	if diag != nil {
		if outputFormat == outputJSON {
			if err := printJSON(cmd, map[string]any{"diagnostic": diag}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Transformation unavailable: %s\n", diag)
		}
		return fmt.Errorf("transformation unavailable: %s", diag.Code)
	}

	if outputFormat == outputJSON {
		features := make([]namedValue, len(vec.Names))
		for i, name := range vec.Names {
			features[i] = namedValue{Name: name, Value: vec.Values[i]}
		}
		return printJSON(cmd, map[string]any{"features": features})
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FEATURE\tVALUE")
	for i, name := range vec.Names {
		fmt.Fprintf(w, "%s\t%.6f\n", name, vec.Values[i])
	}
	return w.Flush()
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heart-risk-mcp-server/internal/domain"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate heart disease risk for a patient",
	Long: `Estimates the risk of heart disease for one patient.

Fields not given on the command line take the value of --preset, or the
defaults of the manual patient form.

Examples:
  heartrisk predict --preset idoso-com-risco
  heartrisk predict --age 61 --cp asymptomatic --chol 310 --thal reversable
  heartrisk predict --preset risco-moderado --oldpeak 2.5 -o json`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	addRecordFlags(predictCmd)
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	rec, err := recordFromFlags(cmd)
	if err != nil {
		return err
	}

	outcome := predictor.Predict(cmd.Context(), rec)

	if outputFormat == outputJSON {
		if err := printJSON(cmd, outcome); err != nil {
			return err
		}
	} else {
		printOutcome(cmd, outcome)
	}

	if !outcome.Available() {
		return fmt.Errorf("prediction unavailable: %s", outcome.Diagnostic.Code)
	}
	return nil
}

func printOutcome(cmd *cobra.Command, outcome domain.PredictionOutcome) {
	if !outcome.Available() {
		fmt.Fprintf(cmd.OutOrStdout(), "Prediction unavailable: %s\n", outcome.Diagnostic)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Prediction:  %s\n", outcome.Result.Prediction)
	fmt.Fprintf(cmd.OutOrStdout(), "Probability: %.2f%%\n", outcome.Result.Probability*100)
	fmt.Fprintf(cmd.OutOrStdout(), "Risk level:  %s\n", outcome.Result.RiskLevel)
}

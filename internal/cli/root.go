// Package cli implements the heartrisk command-line tool.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heart-risk-mcp-server/internal/app"
	"github.com/heart-risk-mcp-server/internal/domain"
)

// Output formats
const (
	outputText = "text"
	outputJSON = "json"
)

var (
	configFile   string
	outputFormat string

	// predictor is created on first use; tests inject their own
	predictor domain.RiskPredictor
	closeApp  func() error
)

var rootCmd = &cobra.Command{
	Use:   "heartrisk",
	Short: "Heart disease risk predictor",
	Long: `heartrisk estimates the risk of heart disease from clinical measurements
using a pretrained logistic-regression model.

The model artifacts are read from the configured artifacts directory
(saved_models/ by default). Without them every prediction is reported as
unavailable together with the reason.`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputText, "output format: text or json")
}

// Execute runs the root command and releases what bootstrap opened, also
// when the command fails
func Execute() (err error) {
	defer func() {
		if closeErr := shutdown(); err == nil {
			err = closeErr
		}
	}()
	return rootCmd.Execute()
}

func checkOutputFormat() error {
	switch outputFormat {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q, use text or json", outputFormat)
	}
}

func bootstrap(_ *cobra.Command, _ []string) error {
	if err := checkOutputFormat(); err != nil {
		return err
	}
	if predictor != nil {
		return nil
	}

	a, err := app.Bootstrap(configFile, app.WithStderrLogs())
	if err != nil {
		return err
	}
	predictor = a.Predictor
	closeApp = a.Close
	return nil
}

func shutdown() error {
	if closeApp == nil {
		return nil
	}
	err := closeApp()
	closeApp = nil
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/heart-risk-mcp-server/internal/domain"
	"github.com/heart-risk-mcp-server/internal/presets"
)

// PatientInput is the input schema shared by the prediction and transform tools
type PatientInput struct {
	Age      int     `json:"age" jsonschema:"age in years (20-100)"`
	Sex      int     `json:"sex" jsonschema:"sex, 1 = male, 0 = female"`
	CP       string  `json:"cp" jsonschema:"chest pain type: typical, nontypical, nonanginal or asymptomatic"`
	Trestbps int     `json:"trestbps" jsonschema:"resting blood pressure in mm Hg (80-220)"`
	Chol     int     `json:"chol" jsonschema:"serum cholesterol in mg/dl (100-600)"`
	FBS      int     `json:"fbs" jsonschema:"fasting blood sugar above 120 mg/dl, 1 = true, 0 = false"`
	RestECG  int     `json:"restecg" jsonschema:"resting electrocardiographic result (0-2)"`
	Thalach  int     `json:"thalach" jsonschema:"maximum heart rate achieved (50-220)"`
	Exang    int     `json:"exang" jsonschema:"exercise induced angina, 1 = yes, 0 = no"`
	Oldpeak  float64 `json:"oldpeak" jsonschema:"ST depression induced by exercise relative to rest (0.0-10.0)"`
	Slope    int     `json:"slope" jsonschema:"slope of the peak exercise ST segment (1-3)"`
	CA       int     `json:"ca" jsonschema:"number of major vessels colored by fluoroscopy (0-3)"`
	Thal     string  `json:"thal" jsonschema:"thalassemia test result: normal, fixed or reversable"`
}

// Record converts the tool input to a patient record
func (in PatientInput) Record() domain.PatientRecord {
	return domain.PatientRecord{
		Age: in.Age, Sex: in.Sex, CP: domain.ChestPain(in.CP), Trestbps: in.Trestbps,
		Chol: in.Chol, FBS: in.FBS, RestECG: in.RestECG, Thalach: in.Thalach,
		Exang: in.Exang, Oldpeak: in.Oldpeak, Slope: in.Slope, CA: in.CA,
		Thal: domain.Thal(in.Thal),
	}
}

// PresetInput selects one of the example patients
type PresetInput struct {
	PresetID string `json:"preset_id" jsonschema:"example patient ID, see list_presets"`
}

// EmptyInput is used by tools without arguments
type EmptyInput struct{}

// DiagnosticOutput explains why a result is unavailable
type DiagnosticOutput struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PredictionOutput is the output schema of the prediction tools
type PredictionOutput struct {
	Status      string            `json:"status"`
	Prediction  string            `json:"prediction,omitempty"`
	Probability float64           `json:"probability"`
	RiskLevel   string            `json:"risk_level,omitempty"`
	Diagnostic  *DiagnosticOutput `json:"diagnostic,omitempty"`
}

// PresetOutput describes one example patient
type PresetOutput struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Record      domain.PatientRecord `json:"record"`
}

// ListPresetsOutput is the output schema of list_presets
type ListPresetsOutput struct {
	Presets []PresetOutput `json:"presets"`
	Count   int            `json:"count"`
}

// FeatureOutput is one named model input
type FeatureOutput struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TransformOutput is the output schema of transform_features
type TransformOutput struct {
	Features   []FeatureOutput   `json:"features,omitempty"`
	Diagnostic *DiagnosticOutput `json:"diagnostic,omitempty"`
}

// ModelStatusOutput is the output schema of model_status
type ModelStatusOutput struct {
	Ready          bool              `json:"ready"`
	Message        string            `json:"message"`
	ModelPath      string            `json:"model_path"`
	ScalerPath     string            `json:"scaler_path"`
	MetadataPath   string            `json:"metadata_path"`
	FeatureCount   int               `json:"feature_count"`
	CategoryPolicy string            `json:"category_policy"`
	LoadedAt       string            `json:"loaded_at,omitempty"`
	Diagnostic     *DiagnosticOutput `json:"diagnostic,omitempty"`
}

// registerTools registers all tool handlers with the MCP server
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "predict_heart_disease",
		Description: "Estimate heart disease risk for a patient from clinical measurements",
	}, s.handlePredict)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "predict_preset",
		Description: "Estimate heart disease risk for one of the built-in example patients",
	}, s.handlePredictPreset)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_presets",
		Description: "List the built-in example patients",
	}, s.handleListPresets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "transform_features",
		Description: "Show the scaled feature vector the classifier receives for a patient",
	}, s.handleTransform)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "model_status",
		Description: "Report whether the model artifacts are loaded",
	}, s.handleModelStatus)
}

func (s *Server) handlePredict(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PatientInput,
) (*mcp.CallToolResult, PredictionOutput, error) {
	outcome := s.predictor.Predict(ctx, input.Record())
	return nil, predictionOutput(outcome), nil
}

func (s *Server) handlePredictPreset(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PresetInput,
) (*mcp.CallToolResult, PredictionOutput, error) {
	outcome := s.predictor.PredictPreset(ctx, input.PresetID)
	return nil, predictionOutput(outcome), nil
}

func (s *Server) handleListPresets(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ListPresetsOutput, error) {
	all := presets.All()
	output := ListPresetsOutput{
		Presets: make([]PresetOutput, len(all)),
		Count:   len(all),
	}
	for i, p := range all {
		output.Presets[i] = PresetOutput{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Record:      p.Record,
		}
	}
	return nil, output, nil
}

func (s *Server) handleTransform(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PatientInput,
) (*mcp.CallToolResult, TransformOutput, error) {
	vec, diag := s.predictor.Transform(ctx, input.Record())
	if diag != nil {
		return nil, TransformOutput{Diagnostic: diagnosticOutput(diag)}, nil
	}

	output := TransformOutput{Features: make([]FeatureOutput, len(vec.Names))}
	for i, name := range vec.Names {
		output.Features[i] = FeatureOutput{Name: name, Value: vec.Values[i]}
	}
	return nil, output, nil
}

func (s *Server) handleModelStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ModelStatusOutput, error) {
	return nil, modelStatusOutput(s.predictor.Status()), nil
}

func predictionOutput(outcome domain.PredictionOutcome) PredictionOutput {
	output := PredictionOutput{Status: string(outcome.Status)}
	if outcome.Available() {
		output.Prediction = string(outcome.Result.Prediction)
		output.Probability = outcome.Result.Probability
		output.RiskLevel = string(outcome.Result.RiskLevel)
		return output
	}
	output.Diagnostic = diagnosticOutput(outcome.Diagnostic)
	return output
}

func diagnosticOutput(diag *domain.Diagnostic) *DiagnosticOutput {
	if diag == nil {
		return nil
	}
	return &DiagnosticOutput{Code: diag.Code, Message: diag.Message, Details: diag.Details}
}

func modelStatusOutput(status domain.ModelStatus) ModelStatusOutput {
	output := ModelStatusOutput{
		Ready:          status.Ready,
		Message:        status.Message,
		ModelPath:      status.ModelPath,
		ScalerPath:     status.ScalerPath,
		MetadataPath:   status.MetadataPath,
		FeatureCount:   status.FeatureCount,
		CategoryPolicy: status.CategoryPolicy,
		Diagnostic:     diagnosticOutput(status.Diagnostic),
	}
	if !status.LoadedAt.IsZero() {
		output.LoadedAt = status.LoadedAt.UTC().Format(time.RFC3339)
	}
	return output
}

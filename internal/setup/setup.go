// Package setup registers the heart-risk MCP server with Claude Desktop.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ServerName is the key of our entry under mcpServers
const ServerName = "heart-risk"

// BinaryName is the MCP server executable
const BinaryName = "mcp-server"

// ClaudeDesktopConfig represents the Claude Desktop configuration file structure.
// Keys other than mcpServers are preserved as-is.
type ClaudeDesktopConfig struct {
	MCPServers map[string]MCPServerConfig
	other      map[string]json.RawMessage
}

// MCPServerConfig represents a single MCP server configuration.
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Options contains options for the setup process.
type Options struct {
	ConfigPath   string // Claude Desktop config file, detected when empty
	BinaryPath   string // Path to the server binary, searched when empty
	ArtifactsDir string // Directory holding the model artifacts
	ConfigFile   string // heart-risk config.yaml passed to the server
}

// ClaudeDesktopConfigPath returns the path to Claude Desktop's config file.
func ClaudeDesktopConfigPath(goos string, getenv func(string) string, home string) (string, error) {
	var configDir string

	switch goos {
	case "darwin":
		configDir = filepath.Join(home, "Library", "Application Support", "Claude")
	case "linux":
		// Try XDG config first, then fallback
		if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "Claude")
		} else {
			configDir = filepath.Join(home, ".config", "Claude")
		}
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configDir = filepath.Join(appData, "Claude")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}

	return filepath.Join(configDir, "claude_desktop_config.json"), nil
}

// DefaultClaudeDesktopConfigPath resolves the config path for this machine
func DefaultClaudeDesktopConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return ClaudeDesktopConfigPath(runtime.GOOS, os.Getenv, home)
}

// LoadClaudeDesktopConfig loads the existing Claude Desktop configuration.
func LoadClaudeDesktopConfig(configPath string) (*ClaudeDesktopConfig, error) {
	config := &ClaudeDesktopConfig{
		MCPServers: make(map[string]MCPServerConfig),
		other:      make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &config.other); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw, ok := config.other["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &config.MCPServers); err != nil {
			return nil, fmt.Errorf("failed to parse mcpServers: %w", err)
		}
		delete(config.other, "mcpServers")
	}
	if config.MCPServers == nil {
		config.MCPServers = make(map[string]MCPServerConfig)
	}

	return config, nil
}

// SaveClaudeDesktopConfig saves the configuration to the Claude Desktop config file.
func SaveClaudeDesktopConfig(configPath string, config *ClaudeDesktopConfig) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	doc := make(map[string]any, len(config.other)+1)
	for k, v := range config.other {
		doc[k] = v
	}
	doc["mcpServers"] = config.MCPServers

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigureClaudeDesktop adds or updates the heart-risk entry and returns the
// config file it wrote.
func ConfigureClaudeDesktop(opts Options) (string, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		var err error
		if configPath, err = DefaultClaudeDesktopConfigPath(); err != nil {
			return "", err
		}
	}

	config, err := LoadClaudeDesktopConfig(configPath)
	if err != nil {
		return "", err
	}

	// Determine binary path
	binaryPath := opts.BinaryPath
	if binaryPath == "" {
		if binaryPath, err = FindBinary(BinaryName); err != nil {
			return "", fmt.Errorf("could not find server binary: %w", err)
		}
	}

	serverConfig := MCPServerConfig{
		Command: binaryPath,
		Env:     map[string]string{"HEART_RISK_LOGGING_OUTPUT": "stderr"},
	}
	if opts.ArtifactsDir != "" {
		dir, err := filepath.Abs(opts.ArtifactsDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve artifacts directory: %w", err)
		}
		serverConfig.Env["HEART_RISK_ARTIFACTS_DIR"] = dir
	}
	if opts.ConfigFile != "" {
		serverConfig.Args = []string{"--config", opts.ConfigFile}
	}

	config.MCPServers[ServerName] = serverConfig

	if err := SaveClaudeDesktopConfig(configPath, config); err != nil {
		return "", err
	}

	return configPath, nil
}

// FindBinary attempts to find the server binary in common locations.
func FindBinary(binaryName string) (string, error) {
	// Also check PATH
	if path, err := exec.LookPath(binaryName); err == nil {
		return path, nil
	}

	locations := []string{
		"./" + binaryName,
		"./bin/" + binaryName,
		"./build/" + binaryName,
		"/usr/local/bin/" + binaryName,
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".local", "bin", binaryName))
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			absPath, err := filepath.Abs(loc)
			if err != nil {
				return loc, nil
			}
			return absPath, nil
		}
	}

	return "", fmt.Errorf("binary '%s' not found in common locations", binaryName)
}

// Status represents the current setup status.
type Status struct {
	ConfigPath   string   `json:"config_path"`
	Configured   bool     `json:"configured"`
	ServerPath   string   `json:"server_path,omitempty"`
	ArtifactsDir string   `json:"artifacts_dir,omitempty"`
	Issues       []string `json:"issues"`
}

// GetStatus checks the Claude Desktop entry and the files it points at.
func GetStatus(configPath string) (*Status, error) {
	status := &Status{ConfigPath: configPath, Issues: []string{}}

	config, err := LoadClaudeDesktopConfig(configPath)
	if err != nil {
		return nil, err
	}

	serverConfig, ok := config.MCPServers[ServerName]
	if !ok {
		status.Issues = append(status.Issues, "heart-risk server not configured in Claude Desktop")
		return status, nil
	}

	status.Configured = true
	status.ServerPath = serverConfig.Command
	if info, err := os.Stat(serverConfig.Command); err != nil {
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary not found at: %s", serverConfig.Command))
	} else if info.Mode()&0o111 == 0 {
		status.Issues = append(status.Issues, fmt.Sprintf("Server binary is not executable: %s", serverConfig.Command))
	}

	if dir, ok := serverConfig.Env["HEART_RISK_ARTIFACTS_DIR"]; ok {
		status.ArtifactsDir = dir
		if _, err := os.Stat(dir); err != nil {
			status.Issues = append(status.Issues, fmt.Sprintf("Artifacts directory does not exist: %s", dir))
		}
	}

	return status, nil
}

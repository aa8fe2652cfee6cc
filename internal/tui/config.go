package tui

import (
	"encoding/json"

	"github.com/sdis66/epitrack/internal/gemini"
	"github.com/sdis66/epitrack/internal/scanner"
)

// configEnvelope wraps a JSON-encoded config value so we can store
// heterogeneous config types in a single zstore collection.
type configEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// GeminiSettings holds the API key and model used for report summaries.
type GeminiSettings struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// ScannerSettings holds the barcode wedge device path.
type ScannerSettings struct {
	DevicePath string `json:"device_path"`
}

func (s GeminiSettings) Configured() bool {
	return s.APIKey != ""
}

// GeminiConfig converts settings to a gemini.Config for API use.
func (s GeminiSettings) GeminiConfig() gemini.Config {
	return gemini.Config{
		APIKey: s.APIKey,
		Model:  s.Model,
	}
}

// Device returns the configured device path, or the default wedge device.
func (s ScannerSettings) Device() string {
	if s.DevicePath != "" {
		return s.DevicePath
	}
	return scanner.DefaultDevice
}

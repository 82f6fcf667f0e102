package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Defaults used when a field is omitted from the tuning file.
const (
	DefaultSubdivisions   = 50
	DefaultTargetSpeed    = 1.0
	DefaultAdvanceTimeout = 2 * time.Second
	DefaultFailUpAxisZ    = 0.4
	DefaultWaypointFile   = "path.csv"
	DefaultOutputFile     = "telemetry.bin"
	DefaultDatabasePath   = "pathtrack.db"
)

// TuningConfig represents the root configuration for a path tracking run.
// Every field is optional; the Get* methods supply defaults so partial files
// are safe.
type TuningConfig struct {
	// Curve params
	WaypointFile *string `json:"waypoint_file,omitempty" yaml:"waypoint_file,omitempty"`
	Subdivisions *int    `json:"subdivisions,omitempty" yaml:"subdivisions,omitempty"`

	// Tracking params
	TargetSpeed    *float64 `json:"target_speed,omitempty" yaml:"target_speed,omitempty"`
	AdvanceTimeout *string  `json:"advance_timeout,omitempty" yaml:"advance_timeout,omitempty"` // duration string like "2s"
	FailUpAxisZ    *float64 `json:"fail_up_axis_z,omitempty" yaml:"fail_up_axis_z,omitempty"`
	PlanarError    *bool    `json:"planar_error,omitempty" yaml:"planar_error,omitempty"`

	// Output params
	OutputFile   *string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	DatabasePath *string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the package defaults.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		WaypointFile:   ptrString(DefaultWaypointFile),
		Subdivisions:   ptrInt(DefaultSubdivisions),
		TargetSpeed:    ptrFloat64(DefaultTargetSpeed),
		AdvanceTimeout: ptrString(DefaultAdvanceTimeout.String()),
		FailUpAxisZ:    ptrFloat64(DefaultFailUpAxisZ),
		PlanarError:    ptrBool(true),
		OutputFile:     ptrString(DefaultOutputFile),
		DatabasePath:   ptrString(DefaultDatabasePath),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file.
// The extension selects the decoder (.json, .yaml, .yml) and the file must be
// under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Subdivisions != nil && *c.Subdivisions < 1 {
		return fmt.Errorf("subdivisions must be at least 1, got %d", *c.Subdivisions)
	}

	if c.TargetSpeed != nil && *c.TargetSpeed < 0 {
		return fmt.Errorf("target_speed must be non-negative, got %f", *c.TargetSpeed)
	}

	if c.AdvanceTimeout != nil && *c.AdvanceTimeout != "" {
		d, err := time.ParseDuration(*c.AdvanceTimeout)
		if err != nil {
			return fmt.Errorf("invalid advance_timeout '%s': %w", *c.AdvanceTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("advance_timeout must be non-negative, got %s", d)
		}
	}

	// The up-axis z component of a unit vector lies in [-1, 1].
	if c.FailUpAxisZ != nil && (*c.FailUpAxisZ < -1 || *c.FailUpAxisZ > 1) {
		return fmt.Errorf("fail_up_axis_z must be between -1 and 1, got %f", *c.FailUpAxisZ)
	}

	return nil
}

// GetWaypointFile returns the waypoint file path or the default.
func (c *TuningConfig) GetWaypointFile() string {
	if c.WaypointFile == nil || *c.WaypointFile == "" {
		return DefaultWaypointFile
	}
	return *c.WaypointFile
}

// GetSubdivisions returns the per-segment subdivision count or the default.
func (c *TuningConfig) GetSubdivisions() int {
	if c.Subdivisions == nil {
		return DefaultSubdivisions
	}
	return *c.Subdivisions
}

// GetTargetSpeed returns the target speed along the path (m/s) or the default.
func (c *TuningConfig) GetTargetSpeed() float64 {
	if c.TargetSpeed == nil {
		return DefaultTargetSpeed
	}
	return *c.TargetSpeed
}

// GetAdvanceTimeout parses and returns the AdvanceTimeout as a time.Duration.
func (c *TuningConfig) GetAdvanceTimeout() time.Duration {
	if c.AdvanceTimeout == nil || *c.AdvanceTimeout == "" {
		return DefaultAdvanceTimeout
	}
	d, err := time.ParseDuration(*c.AdvanceTimeout)
	if err != nil {
		return DefaultAdvanceTimeout
	}
	return d
}

// GetFailUpAxisZ returns the up-axis threshold below which a run has failed.
func (c *TuningConfig) GetFailUpAxisZ() float64 {
	if c.FailUpAxisZ == nil {
		return DefaultFailUpAxisZ
	}
	return *c.FailUpAxisZ
}

// GetPlanarError reports whether tracking error ignores the z axis.
func (c *TuningConfig) GetPlanarError() bool {
	if c.PlanarError == nil {
		return true
	}
	return *c.PlanarError
}

// GetOutputFile returns the telemetry output path or the default.
func (c *TuningConfig) GetOutputFile() string {
	if c.OutputFile == nil || *c.OutputFile == "" {
		return DefaultOutputFile
	}
	return *c.OutputFile
}

// GetDatabasePath returns the run store path or the default.
func (c *TuningConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return DefaultDatabasePath
	}
	return *c.DatabasePath
}

package problem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/snow-ghost/decision/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Loader handles loading problem definitions
type Loader struct {
	path   string
	logger *logging.Logger
}

// NewLoader creates a new problem loader. A nil logger discards output.
func NewLoader(path string, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Loader{
		path:   path,
		logger: logger,
	}
}

// Path returns the file the loader reads and writes
func (l *Loader) Path() string {
	if l.path != "" {
		return l.path
	}
	// Check if the path is provided via environment
	if path := os.Getenv("OPTIMIZER_PROBLEM"); path != "" {
		return path
	}
	return "problem.yaml"
}

// Load loads the problem definition from the configured file
func (l *Loader) Load() (*Definition, error) {
	path := l.Path()

	// Read the problem file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file %s: %w", path, err)
	}

	def, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for _, o := range def.Objectives {
		if o.Weight < 0 || o.Weight > 1 {
			l.logger.Debug("Objective weight clamped to [0,1]", "objective", o.Name, "weight", o.Weight)
		}
	}
	l.logger.Debug("Problem loaded",
		"path", path,
		"objectives", len(def.Objectives),
		"constraints", len(def.Constraints),
		"solutions", len(def.Solutions),
	)
	return def, nil
}

// LoadFromBytes parses a problem definition from YAML data
func LoadFromBytes(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML problem: %w", err)
	}
	return &def, nil
}

// Save saves the definition to the configured file
func (l *Loader) Save(def *Definition) error {
	path := l.Path()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create problem directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write problem file: %w", err)
	}

	return nil
}

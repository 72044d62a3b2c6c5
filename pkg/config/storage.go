package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// WriteFile marshals v to path as JSON, or YAML for .yaml and .yml paths,
// creating the directory if needed
func WriteFile(v any, path string) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReadFile unmarshals path into v, picking the format from the extension
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return nil
}

// SaveToFile writes a snapshot as JSON, or YAML for .yaml and .yml paths
func SaveToFile(snapshot *Snapshot, path string) error {
	return WriteFile(snapshot, path)
}

// LoadFromFile reads a snapshot written by SaveToFile
func LoadFromFile(path string) (*Snapshot, error) {
	var snapshot Snapshot
	if err := ReadFile(path, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SaveTunerConfig writes a tuner configuration file
func SaveTunerConfig(c TunerConfig, path string) error {
	return WriteFile(c, path)
}

// LoadTunerConfig reads a tuner configuration file. Fields missing from the
// file keep their defaults.
func LoadTunerConfig(path string) (TunerConfig, error) {
	c := Default()
	if err := ReadFile(path, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// GetConfigPath returns the default snapshot path for a dongle serial
func GetConfigPath(serial string) string {
	return filepath.Join("etc", "rtlsdr", fmt.Sprintf("%s.json", serial))
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxPrecision bounds Report.Precision.
const MaxPrecision = 12

// Config represents the complete run configuration
type Config struct {
	Inputs  InputsConfig  `json:"inputs" yaml:"inputs"`
	Account AccountConfig `json:"account" yaml:"account"`
	Report  ReportConfig  `json:"report" yaml:"report"`
}

// InputsConfig names the two event files. Compression is picked by extension.
type InputsConfig struct {
	FillsFile  string `json:"fills_file" yaml:"fills_file"`
	PricesFile string `json:"prices_file" yaml:"prices_file"`
	// Required fails the run when an input cannot be opened instead of
	// treating it as empty.
	Required bool `json:"required" yaml:"required"`
}

// AccountConfig contains account parameters
type AccountConfig struct {
	Currency string `json:"currency" yaml:"currency"`
}

// ReportConfig controls what a run prints
type ReportConfig struct {
	Marks     bool  `json:"marks" yaml:"marks"`
	Summary   bool  `json:"summary" yaml:"summary"`
	Precision int32 `json:"precision" yaml:"precision"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths, JSON otherwise
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Inputs.FillsFile == "" {
		return fmt.Errorf("inputs.fills_file is required")
	}
	if c.Inputs.PricesFile == "" {
		return fmt.Errorf("inputs.prices_file is required")
	}
	if c.Inputs.FillsFile == c.Inputs.PricesFile {
		return fmt.Errorf("inputs.fills_file and inputs.prices_file must differ")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if len(c.Account.Currency) != 3 || strings.ToUpper(c.Account.Currency) != c.Account.Currency {
		return fmt.Errorf("account.currency must be a 3 letter upper case code")
	}
	if c.Report.Precision < 0 || c.Report.Precision > MaxPrecision {
		return fmt.Errorf("report.precision must be between 0 and %d", MaxPrecision)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			FillsFile:  "fills.gz",
			PricesFile: "prices.gz",
		},
		Account: AccountConfig{
			Currency: "USD",
		},
		Report: ReportConfig{
			Marks:     true,
			Summary:   true,
			Precision: 2,
		},
	}
}

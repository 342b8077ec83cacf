// Package config loads stepforge settings from YAML. Values missing from
// the file keep their defaults; command line flags override both.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/stepforge/pkg/logging"
)

// Metadata is written to the exchange-file header and product records.
type Metadata struct {
	Author            string   `yaml:"author"`
	Organization      string   `yaml:"organization"`
	Description       []string `yaml:"description"`
	Preprocessor      string   `yaml:"preprocessor"`
	OriginatingSystem string   `yaml:"originating_system"`
	Authorization     string   `yaml:"authorization"`
}

// Units describes the geometric context of every solid.
type Units struct {
	// LengthPrefix is the SI prefix of the length unit, e.g. "MILLI"; empty
	// means plain metres.
	LengthPrefix string `yaml:"length_prefix"`
	// Uncertainty is the distance accuracy in length units.
	Uncertainty float64 `yaml:"uncertainty"`
}

// Schema selects the application protocol the file conforms to.
type Schema struct {
	Name               string `yaml:"name"`
	ApplicationContext string `yaml:"application_context"`
	ProtocolName       string `yaml:"protocol_name"`
	ProtocolStatus     string `yaml:"protocol_status"`
	ProtocolYear       int    `yaml:"protocol_year"`
}

// Product fills the fixed fields of the product structure.
type Product struct {
	Discipline        string `yaml:"discipline"`
	DefinitionContext string `yaml:"definition_context"`
	LifeCycleStage    string `yaml:"life_cycle_stage"`
	DefinitionID      string `yaml:"definition_id"`
}

// Config is the complete configuration.
type Config struct {
	Logging  logging.Config `yaml:"logging"`
	Metadata Metadata       `yaml:"metadata"`
	Units    Units          `yaml:"units"`
	Schema   Schema         `yaml:"schema"`
	Product  Product        `yaml:"product"`
}

// Default returns the AP214 millimetre configuration.
func Default() Config {
	return Config{
		Logging: logging.DefaultConfig(),
		Metadata: Metadata{
			Author:            "jscad-to-step",
			Organization:      "tscircuit",
			OriginatingSystem: "stepforge",
		},
		Units: Units{
			LengthPrefix: "MILLI",
			Uncertainty:  1e-5,
		},
		Schema: Schema{
			Name:               "AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }",
			ApplicationContext: "core data for automotive mechanical design",
			ProtocolName:       "automotive_design",
			ProtocolStatus:     "international standard",
			ProtocolYear:       2000,
		},
		Product: Product{
			Discipline:        "mechanical",
			DefinitionContext: "part definition",
			LifeCycleStage:    "design",
			DefinitionID:      "design",
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings that would produce an unusable file.
func (c Config) Validate() error {
	switch c.Units.LengthPrefix {
	case "", "EXA", "PETA", "TERA", "GIGA", "MEGA", "KILO", "HECTO", "DECA",
		"DECI", "CENTI", "MILLI", "MICRO", "NANO", "PICO", "FEMTO", "ATTO":
	default:
		return fmt.Errorf("unknown SI prefix %q", c.Units.LengthPrefix)
	}
	if c.Units.Uncertainty <= 0 {
		return fmt.Errorf("uncertainty must be positive, got %g", c.Units.Uncertainty)
	}
	if c.Schema.Name == "" {
		return fmt.Errorf("schema name is empty")
	}
	return nil
}

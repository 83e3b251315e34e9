package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

//go:embed schema.json
var schemaJSON string

// Logging holds the logging section.
type Logging struct {
	Level string `yaml:"level" json:"level"`
}

// Config is the tool's full configuration surface. Every field has a flag
// counterpart; a YAML file supplies defaults and flags override it.
type Config struct {
	Host          string   `yaml:"host" json:"host"`
	Targets       []string `yaml:"targets" json:"targets"`
	Output        string   `yaml:"output" json:"output"`
	Cache         string   `yaml:"cache" json:"cache"`
	MsvcVersion   string   `yaml:"msvcVersion" json:"msvcVersion"`
	SdkVersion    string   `yaml:"sdkVersion" json:"sdkVersion"`
	Preview       bool     `yaml:"preview" json:"preview"`
	AcceptLicense bool     `yaml:"acceptLicense" json:"acceptLicense"`
	CABundle      string   `yaml:"caBundle" json:"caBundle"`
	VersionSelect string   `yaml:"versionSelect" json:"versionSelect"`
	Workers       int      `yaml:"workers" json:"workers"`
	MsiexecPath   string   `yaml:"msiexecPath" json:"msiexecPath"`
	Logging       Logging  `yaml:"logging" json:"logging"`
}

// Default returns the built-in configuration: x64 host and target, the
// conventional msvc/downloads directories, legacy version selection, one
// download worker.
func Default() *Config {
	return &Config{
		Host:          "x64",
		Targets:       []string{"x64"},
		Output:        "msvc",
		Cache:         "downloads",
		VersionSelect: "legacy",
		Workers:       1,
		Logging:       Logging{Level: "info"},
	}
}

// Load reads a YAML config file, validates it against the embedded schema,
// and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks raw YAML config bytes against the embedded JSON schema.
func Validate(data []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting to JSON: %w", err)
	}

	schema, err := jsonschema.CompileString("config.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return schema.Validate(doc)
}

package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"arxmerge/fragment"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	LoadingConfig struct {
		Extensions []string `yaml:"extensions" validate:"min=1,dive,startswith=."`
		Permissive bool     `yaml:"permissive"`
		Archives   bool     `yaml:"archives"`
		Workers    int      `yaml:"workers" validate:"min=0,max=256"`
	}

	ResolvingConfig struct {
		Unresolved ResolvePolicy   `yaml:"unresolved"`
		Ambiguous  AmbiguityPolicy `yaml:"ambiguous"`
	}

	MergingConfig struct {
		AssignUUIDs bool `yaml:"assign_uuids"`
	}

	AnnotationConfig struct {
		Enable      bool   `yaml:"enable"`
		GID         string `yaml:"gid" validate:"required_if=Enable true"`
		Deduplicate bool   `yaml:"deduplicate"`
	}

	OutputConfig struct {
		NameTemplate string `yaml:"name_template" validate:"required"`
		Indent       int    `yaml:"indent" validate:"min=0,max=8"`
		Overwrite    bool   `yaml:"overwrite"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Loading    LoadingConfig    `yaml:"loading"`
		Resolving  ResolvingConfig  `yaml:"resolving"`
		Merging    MergingConfig    `yaml:"merging"`
		Annotation AnnotationConfig `yaml:"annotation"`
		Output     OutputConfig     `yaml:"output"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, output name template is expanded
	// per run and not when configuration is loaded
	OutputNameTemplateFieldName TemplateFieldName = "name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// LoadOptions converts loading section into fragment loader configuration.
func (conf *LoadingConfig) LoadOptions() fragment.LoadOptions {
	return fragment.LoadOptions{
		Extensions: append([]string(nil), conf.Extensions...),
		Permissive: conf.Permissive,
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkEnums)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// Package config loads the letters tool configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable that points at a config file.
const EnvConfigFile = "LETTERS_CONFIG_FILE"

// EnvPrefix prefixes every override variable, e.g. LETTERS_MERGE_DEDUP.
const EnvPrefix = "LETTERS"

// Config holds all configuration for the letters tool.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Merge      MergeConfig      `yaml:"merge"`
	AddMissing AddMissingConfig `yaml:"add_missing"`
	Codegen    CodegenConfig    `yaml:"codegen"`
	Archive    ArchiveConfig    `yaml:"archive"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// MergeConfig configures the merge command.
type MergeConfig struct {
	BasePath        string `yaml:"base_path" validate:"required"`
	SupplementPath  string `yaml:"supplement_path" validate:"required"`
	OutputPath      string `yaml:"output_path" validate:"required"`
	Dedup           string `yaml:"dedup" validate:"oneof=substring exact"`
	OnMissingLetter string `yaml:"on_missing_letter" validate:"oneof=skip create"`
	UpdatedBy       string `yaml:"updated_by" validate:"required"`
	Notes           string `yaml:"notes"`
}

// AddMissingConfig configures the add-missing command.
type AddMissingConfig struct {
	InputPath  string `yaml:"input_path" validate:"required"`
	OutputPath string `yaml:"output_path" validate:"required"`
}

// CodegenConfig configures the codegen command.
type CodegenConfig struct {
	InputPath  string `yaml:"input_path" validate:"required"`
	OutputPath string `yaml:"output_path" validate:"required"`
}

// ArchiveConfig configures the SQLite snapshot archive. An empty DBPath
// disables archiving after merge.
type ArchiveConfig struct {
	DBPath string `yaml:"db_path"`
}

// Default returns the configuration matching the historical fixed file names.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Merge: MergeConfig{
			BasePath:        "unified_letters_database_original.json",
			SupplementPath:  "letter-meanings-extracted.json",
			OutputPath:      "unified_letters_database_updated.json",
			Dedup:           "substring",
			OnMissingLetter: "skip",
			UpdatedBy:       "hurof_md_integration",
			Notes:           "تم دمج معاني الحروف من hurof.md (بحث 40 سنة)",
		},
		AddMissing: AddMissingConfig{
			InputPath:  "unified_letters_database_updated.json",
			OutputPath: "unified_letters_database_complete.json",
		},
		Codegen: CodegenConfig{
			InputPath:  "unified_letters_database_complete.json",
			OutputPath: "letter_engine_initialization.ts",
		},
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads path (or $LETTERS_CONFIG_FILE when path is empty) over the
// defaults, applies environment overrides and validates the result. A missing
// file is only an error when it was asked for explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigFile)
		explicit = path != ""
	}
	if path == "" {
		path = "letters.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	overrideStructFromEnvWithPrefix(cfg, EnvPrefix)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with
// environment variables named after their yaml tags.
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}
		yamlTag := strings.Split(typ.Field(i).Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if b, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(b)
				}
			}
		case reflect.Struct:
			overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey)
		}
	}
}

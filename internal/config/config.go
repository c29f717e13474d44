package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "crimelens/internal/errors"
)

// ParsePolicy controls what the pipeline does with a row whose raw
// timestamp (or other typed field) cannot be parsed.
type ParsePolicy string

const (
	// ParsePolicyFail aborts the whole run with a ParseError.
	ParsePolicyFail ParsePolicy = "fail"
	// ParsePolicyDrop removes the offending row and logs how many were dropped.
	ParsePolicyDrop ParsePolicy = "drop"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/crimereport.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputFile  string `yaml:"input_file" envconfig:"INPUT_FILE" default:"data/crimes.csv" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports" validate:"required"`
}

// AnalysisConfig contains the knobs of the analysis run itself.
type AnalysisConfig struct {
	FromYear     int         `yaml:"from_year" envconfig:"FROM_YEAR" default:"2012" validate:"min=1900"`
	ToYear       int         `yaml:"to_year" envconfig:"TO_YEAR" default:"2016" validate:"min=1900,gtefield=FromYear"`
	TopN         int         `yaml:"top_n" envconfig:"TOP_N" default:"20" validate:"min=1"`
	MinTypeCount int         `yaml:"min_type_count" envconfig:"MIN_TYPE_COUNT" default:"0" validate:"min=0"`
	OnParseError ParsePolicy `yaml:"on_parse_error" envconfig:"ON_PARSE_ERROR" default:"fail" validate:"oneof=fail drop"`
}

// Years returns the inclusive admissible year set as a slice.
func (a AnalysisConfig) Years() []int {
	years := make([]int, 0, a.ToYear-a.FromYear+1)
	for y := a.FromYear; y <= a.ToYear; y++ {
		years = append(years, y)
	}
	return years
}

// Load loads configuration from an optional YAML file and CRIMELENS_*
// environment variables. Environment values take precedence over the file,
// file values over defaults.
func Load(configFile string) (*Config, error) {
	var cfg Config

	// Defaults come from the envconfig struct tags.
	if err := envconfig.Process("CRIMELENS", &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).
				WithContext("path", configFile)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
		// Running envconfig.Process again here would re-apply the default
		// tags over the file values, so env precedence is restored by hand.
		if err := applyEnvOverrides(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides re-applies set CRIMELENS_* environment variables on top
// of the merged configuration, so env wins over the file without touching
// fields the environment leaves unset.
func applyEnvOverrides(cfg *Config) error {
	setString(envLoggingLevel, &cfg.Logging.Level)
	setString(envLoggingOutput, &cfg.Logging.Output)
	setString(envLoggingFilePath, &cfg.Logging.FilePath)
	setString(envPathsInputFile, &cfg.Paths.InputFile)
	setString(envPathsReportsDir, &cfg.Paths.ReportsDir)

	if err := setInt(envAnalysisFromYear, &cfg.Analysis.FromYear); err != nil {
		return err
	}
	if err := setInt(envAnalysisToYear, &cfg.Analysis.ToYear); err != nil {
		return err
	}
	if err := setInt(envAnalysisTopN, &cfg.Analysis.TopN); err != nil {
		return err
	}
	if err := setInt(envAnalysisMinTypeCount, &cfg.Analysis.MinTypeCount); err != nil {
		return err
	}

	if value, ok := os.LookupEnv(envAnalysisOnParseError); ok {
		cfg.Analysis.OnParseError = ParsePolicy(value)
	}

	return nil
}

// Environment variable names as envconfig derives them from the struct tags.
const (
	envLoggingLevel         = "CRIMELENS_LOGGING_LEVEL"
	envLoggingOutput        = "CRIMELENS_LOGGING_OUTPUT"
	envLoggingFilePath      = "CRIMELENS_LOGGING_FILE_PATH"
	envPathsInputFile       = "CRIMELENS_PATHS_INPUT_FILE"
	envPathsReportsDir      = "CRIMELENS_PATHS_REPORTS_DIR"
	envAnalysisFromYear     = "CRIMELENS_ANALYSIS_FROM_YEAR"
	envAnalysisToYear       = "CRIMELENS_ANALYSIS_TO_YEAR"
	envAnalysisTopN         = "CRIMELENS_ANALYSIS_TOP_N"
	envAnalysisMinTypeCount = "CRIMELENS_ANALYSIS_MIN_TYPE_COUNT"
	envAnalysisOnParseError = "CRIMELENS_ANALYSIS_ON_PARSE_ERROR"
)

func setString(name string, dst *string) {
	if value, ok := os.LookupEnv(name); ok {
		*dst = value
	}
}

func setInt(name string, dst *int) error {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return apperrors.NewConfigError("environment variable is not an integer", err).
			WithContext("variable", name)
	}
	*dst = n
	return nil
}

// mergeConfigs merges file config over the defaults-only config. A zero
// value in the file config means "unset": a file cannot distinguish an
// explicit zero from an absent key, so only non-zero file values override
// the base.
func mergeConfigs(fileConfig, baseConfig Config) Config {
	if fileConfig.Logging.Level != "" {
		baseConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fileConfig.Logging.Output != "" {
		baseConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fileConfig.Logging.FilePath != "" {
		baseConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if fileConfig.Paths.InputFile != "" {
		baseConfig.Paths.InputFile = fileConfig.Paths.InputFile
	}
	if fileConfig.Paths.ReportsDir != "" {
		baseConfig.Paths.ReportsDir = fileConfig.Paths.ReportsDir
	}
	if fileConfig.Analysis.FromYear != 0 {
		baseConfig.Analysis.FromYear = fileConfig.Analysis.FromYear
	}
	if fileConfig.Analysis.ToYear != 0 {
		baseConfig.Analysis.ToYear = fileConfig.Analysis.ToYear
	}
	if fileConfig.Analysis.TopN != 0 {
		baseConfig.Analysis.TopN = fileConfig.Analysis.TopN
	}
	if fileConfig.Analysis.MinTypeCount != 0 {
		baseConfig.Analysis.MinTypeCount = fileConfig.Analysis.MinTypeCount
	}
	if fileConfig.Analysis.OnParseError != "" {
		baseConfig.Analysis.OnParseError = fileConfig.Analysis.OnParseError
	}

	return baseConfig
}

// validate validates the configuration using struct tags.
func (c *Config) validate() error {
	v := validator.New()

	// Report fields by their yaml names so errors match the config file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return apperrors.NewConfigError("config validation failed", err).
				WithContext("field", first.Namespace()).
				WithContext("constraint", first.Tag())
		}
		return apperrors.NewConfigError("config validation failed", err)
	}

	return nil
}

// GetReportPath returns the path of a named report artifact under ReportsDir.
func (c *Config) GetReportPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.ReportsDir, name)
}

// findConfigFile returns the first config file found in common locations,
// or "" to run on env vars and defaults only.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/crimereport.log",
		},
		Paths: PathsConfig{
			InputFile:  "data/crimes.csv",
			ReportsDir: "reports",
		},
		Analysis: AnalysisConfig{
			FromYear:     2012,
			ToYear:       2016,
			TopN:         20,
			MinTypeCount: 0,
			OnParseError: ParsePolicyFail,
		},
	}
}

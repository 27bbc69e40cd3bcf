// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iwvelando/instax-forecast/internal/inference"
	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/mathutil"
	"github.com/iwvelando/instax-forecast/pkg/validation"
)

// Configuration holds all configuration for instax-forecast.
type Configuration struct {
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Prediction PredictionConfig `yaml:"prediction"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// ArtifactsConfig locates the fitted scaler and model documents.
type ArtifactsConfig struct {
	ScalerPath string `yaml:"scalerPath"`
	ModelPath  string `yaml:"modelPath"`
}

// PredictionConfig controls how predictions are validated and displayed.
type PredictionConfig struct {
	Rounding    string  `yaml:"rounding,omitempty"`    // round, half-even, truncate
	MaxDiscount float64 `yaml:"maxDiscount,omitempty"` // 0 disables the bound
}

// ServerConfig holds the web UI listener settings.
type ServerConfig struct {
	Address         string        `yaml:"address,omitempty"`
	MaxRequestSize  string        `yaml:"maxRequestSize,omitempty"`
	ReadTimeout     time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"writeTimeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
	MaxSizeMB  int    `yaml:"maxSizeMB,omitempty"`  // rotation size for outputFile
	MaxBackups int    `yaml:"maxBackups,omitempty"` // rotated files kept
	MaxAgeDays int    `yaml:"maxAgeDays,omitempty"` // rotated file retention
	Compress   bool   `yaml:"compress,omitempty"`   // gzip rotated files
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
	Locale string `yaml:"locale,omitempty"` // BCP 47 tag for number formatting
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("artifacts.scalerPath", constants.DefaultScalerFile)
	v.SetDefault("artifacts.modelPath", constants.DefaultModelFile)
	v.SetDefault("prediction.rounding", constants.DefaultRounding)
	v.SetDefault("prediction.maxDiscount", constants.DefaultMaxDiscount)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxRequestSize", fmt.Sprintf("%d", constants.DefaultMaxRequestSizeBytes))
	v.SetDefault("server.readTimeout", constants.DefaultReadTimeoutSeconds*time.Second)
	v.SetDefault("server.writeTimeout", constants.DefaultWriteTimeoutSeconds*time.Second)
	v.SetDefault("server.shutdownTimeout", constants.DefaultShutdownTimeoutSeconds*time.Second)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("logging.maxSizeMB", constants.DefaultLogMaxSizeMB)
	v.SetDefault("logging.maxBackups", constants.DefaultLogMaxBackups)
	v.SetDefault("logging.maxAgeDays", constants.DefaultLogMaxAgeDays)
	v.SetDefault("logging.compress", false)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.locale", constants.DefaultLocale)

	// INSTAX_ARTIFACTS_SCALERPATH overrides artifacts.scalerPath, and so on.
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yml")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// Resolve loads the configuration at path. When path is the default config
// file name and no such file exists, defaults are returned instead.
func Resolve(path string) (*Configuration, error) {
	if path == constants.DefaultConfigFile {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return Defaults()
		}
	}
	return LoadConfiguration(path)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// Defaults returns the configuration used when no file is given, with
// environment overrides applied.
func Defaults() (*Configuration, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// RoundingPolicy returns the configured display rounding policy.
func (c *Configuration) RoundingPolicy() (mathutil.RoundingPolicy, error) {
	return mathutil.ParseRoundingPolicy(c.Prediction.Rounding)
}

// PipelineOptions converts the configuration into inference options.
func (c *Configuration) PipelineOptions() (inference.Options, error) {
	rounding, err := c.RoundingPolicy()
	if err != nil {
		return inference.Options{}, err
	}
	return inference.Options{
		ScalerPath:  c.Artifacts.ScalerPath,
		ModelPath:   c.Artifacts.ModelPath,
		Rounding:    rounding,
		MaxDiscount: c.Prediction.MaxDiscount,
	}, nil
}

// Validate returns an error for settings that cannot work.
func (c *Configuration) Validate() error {
	if c.Artifacts.ScalerPath == "" {
		return fmt.Errorf("artifacts.scalerPath is required")
	}
	if c.Artifacts.ModelPath == "" {
		return fmt.Errorf("artifacts.modelPath is required")
	}
	if _, err := c.RoundingPolicy(); err != nil {
		return err
	}
	if c.Prediction.MaxDiscount < 0 {
		return fmt.Errorf("prediction.maxDiscount must not be negative, got %g", c.Prediction.MaxDiscount)
	}
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	warnings := validation.ValidateArtifactPaths(c.Artifacts.ScalerPath, c.Artifacts.ModelPath)

	if c.Prediction.MaxDiscount == 0 {
		warnings = append(warnings, "prediction.maxDiscount is 0; discounts are unbounded")
	}
	if c.Prediction.Rounding == "truncate" {
		warnings = append(warnings, "prediction.rounding is truncate; displayed quantities round toward zero")
	}
	if c.Logging.OutputFile != "" && c.Logging.MaxSizeMB <= 0 {
		warnings = append(warnings, "logging.maxSizeMB is not positive; the rotation default will be used")
	}

	return warnings
}

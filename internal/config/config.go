package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-tex2chtml/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Limits on config content.
const (
	MaxConfigSize        = 1 << 20 // 1MB of YAML
	MaxURLLength         = 2048    // Browser limit
	MaxTitleLength       = 200     // Standalone document title
	MaxPackageNameLength = 32      // "configmacros" is the longest known name
	MaxPackages          = 64
	MaxMacros            = 256
	MaxMacroLength       = 1000 // Expansion text
)

// Engine names accepted in config files.
const (
	EngineMathJax = "mathjax"
	EngineKaTeX   = "katex"
)

// ConfigDirName is the directory under the user config dir searched for named configs.
const ConfigDirName = "go-tex2chtml"

var (
	listSeparator   = regexp.MustCompile(`\s*,\s*`)
	macroNameRe     = regexp.MustCompile(`^[A-Za-z]+$`)
	packageNameRe   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	configFileNames = []string{".yaml", ".yml"}
)

// Config holds typesetting configuration loaded from YAML.
// Zero values mean "use the library default".
type Config struct {
	Engine     string            `yaml:"engine"`     // "mathjax" (default) or "katex"
	Timeout    string            `yaml:"timeout"`    // Go duration, e.g. "45s"
	Em         float64           `yaml:"em"`         // em-size in pixels
	Ex         float64           `yaml:"ex"`         // ex-size in pixels
	Packages   PackageList       `yaml:"packages"`   // list or comma-separated string
	FontURL    string            `yaml:"fontURL"`    // web font base URL
	MathJaxURL string            `yaml:"mathjaxURL"` // MathJax component script
	Macros     map[string]string `yaml:"macros"`     // extra macro definitions
	Output     OutputConfig      `yaml:"output"`
}

// OutputConfig defines output document options.
type OutputConfig struct {
	Standalone bool   `yaml:"standalone"` // Wrap fragments in a full HTML document
	Title      string `yaml:"title"`      // Title used when wrapping
}

// PackageList is a list of TeX package names. In YAML it may be written
// as a sequence or as one comma-separated string.
type PackageList []string

// UnmarshalYAML accepts both `[base, ams]` and `"base, ams"`.
func (p *PackageList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*p = list
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("packages: expected a list or a comma-separated string: %w", err)
	}
	*p = SplitList(s)
	return nil
}

// SplitList splits a comma-separated list, ignoring whitespace around
// commas and dropping empty items.
func SplitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := listSeparator.Split(s, -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TimeoutDuration parses Timeout. Returns 0 when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidValue, c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidValue, c.Timeout)
	}
	return d, nil
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for callers
// that build a Config from flags or environment variables.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Engine) {
	case "", EngineMathJax, EngineKaTeX:
	default:
		return fmt.Errorf("%w: engine %q (must be %s or %s)", ErrInvalidValue, c.Engine, EngineMathJax, EngineKaTeX)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if c.Em < 0 {
		return fmt.Errorf("%w: em must not be negative, got %g", ErrInvalidValue, c.Em)
	}
	if c.Ex < 0 {
		return fmt.Errorf("%w: ex must not be negative, got %g", ErrInvalidValue, c.Ex)
	}

	if err := validateFieldLength("fontURL", c.FontURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("mathjaxURL", c.MathJaxURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.title", c.Output.Title, MaxTitleLength); err != nil {
		return err
	}

	if len(c.Packages) > MaxPackages {
		return fmt.Errorf("%w: %d packages (max %d)", ErrInvalidValue, len(c.Packages), MaxPackages)
	}
	for i, name := range c.Packages {
		if err := validateFieldLength(fmt.Sprintf("packages[%d]", i), name, MaxPackageNameLength); err != nil {
			return err
		}
		if !packageNameRe.MatchString(name) {
			return fmt.Errorf("%w: package name %q", ErrInvalidValue, name)
		}
	}

	if len(c.Macros) > MaxMacros {
		return fmt.Errorf("%w: %d macros (max %d)", ErrInvalidValue, len(c.Macros), MaxMacros)
	}
	for name, expansion := range c.Macros {
		if !macroNameRe.MatchString(name) {
			return fmt.Errorf("%w: macro name %q (letters only, no backslash)", ErrInvalidValue, name)
		}
		if err := validateFieldLength("macros."+name, expansion, MaxMacroLength); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns an empty configuration; every value falls back to
// the library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML config data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxConfigSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxConfigSize)
	}

	var cfg Config
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-tex2chtml/
func resolveConfigPath(name string) (string, error) {
	triedPaths := make([]string, 0, len(configFileNames)*2)

	for _, ext := range configFileNames {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range configFileNames {
			userPath := filepath.Join(userConfigDir, ConfigDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// SearchedPaths returns the locations resolveConfigPath would try for name.
// Used to build "config not found" hints.
func SearchedPaths(name string) []string {
	paths := make([]string, 0, len(configFileNames)*2)
	for _, ext := range configFileNames {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range configFileNames {
			paths = append(paths, filepath.Join(dir, ConfigDirName, name+ext))
		}
	}
	return paths
}

package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	tex2chtml "github.com/alnah/go-tex2chtml"
	"github.com/alnah/go-tex2chtml/internal/config"
)

// envPrefix starts every environment variable tex2chtml reads.
const envPrefix = "TEX2CHTML_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // TEX2CHTML_CONFIG: config file name or path
	Engine     string        // TEX2CHTML_ENGINE: mathjax or katex
	Timeout    time.Duration // TEX2CHTML_TIMEOUT: typesetting timeout
	Em         float64       // TEX2CHTML_EM: em-size in pixels
	Ex         float64       // TEX2CHTML_EX: ex-size in pixels
	Packages   []string      // TEX2CHTML_PACKAGES: comma-separated packages
	FontURL    string        // TEX2CHTML_FONT_URL: web font base URL
	MathJaxURL string        // TEX2CHTML_MATHJAX_URL: MathJax component script
}

// knownEnvVars lists valid TEX2CHTML_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TEX2CHTML_CONFIG":      true,
	"TEX2CHTML_ENGINE":      true,
	"TEX2CHTML_TIMEOUT":     true,
	"TEX2CHTML_EM":          true,
	"TEX2CHTML_EX":          true,
	"TEX2CHTML_PACKAGES":    true,
	"TEX2CHTML_FONT_URL":    true,
	"TEX2CHTML_MATHJAX_URL": true,
	"TEX2CHTML_CONTAINER":   true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Values that do not parse are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("TEX2CHTML_CONFIG"),
		Engine:     os.Getenv("TEX2CHTML_ENGINE"),
		Packages:   tex2chtml.ParsePackages(os.Getenv("TEX2CHTML_PACKAGES")),
		FontURL:    os.Getenv("TEX2CHTML_FONT_URL"),
		MathJaxURL: os.Getenv("TEX2CHTML_MATHJAX_URL"),
	}

	if timeout := os.Getenv("TEX2CHTML_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	cfg.Em = parsePositiveFloat(os.Getenv("TEX2CHTML_EM"))
	cfg.Ex = parsePositiveFloat(os.Getenv("TEX2CHTML_EX"))

	return cfg
}

// parsePositiveFloat returns s as a float, or 0 if it is not a positive number.
func parsePositiveFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

// warnUnknownEnvVars logs warnings for unrecognized TEX2CHTML_* variables.
// Helps catch typos like TEX2CHTML_FONTURL instead of TEX2CHTML_FONT_URL.
func warnUnknownEnvVars(log logrus.FieldLogger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				log.Warnf("unknown environment variable %s (typo?)", name)
			}
		}
	}
}

// applyEnvConfig overlays set environment variables on the config file
// values, giving: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Engine != "" {
		cfg.Engine = env.Engine
	}
	if env.Timeout > 0 {
		cfg.Timeout = env.Timeout.String()
	}
	if env.Em > 0 {
		cfg.Em = env.Em
	}
	if env.Ex > 0 {
		cfg.Ex = env.Ex
	}
	if len(env.Packages) > 0 {
		cfg.Packages = env.Packages
	}
	if env.FontURL != "" {
		cfg.FontURL = env.FontURL
	}
	if env.MathJaxURL != "" {
		cfg.MathJaxURL = env.MathJaxURL
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	tex2chtml "github.com/alnah/go-tex2chtml"
	"github.com/alnah/go-tex2chtml/internal/config"
	"github.com/alnah/go-tex2chtml/internal/fileutil"
	"github.com/alnah/go-tex2chtml/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrReadInput   = errors.New("failed to read input file")
	ErrWriteOutput = errors.New("failed to write output file")
)

// filePermissions is rw-r--r--: owner read+write, others read.
const filePermissions = 0o644

// runConvert loads configuration, typesets inputPath and writes the result.
// TeX errors are printed to env.Stderr one per line, and the returned error
// wraps tex2chtml.ErrTeX.
func runConvert(ctx context.Context, inputPath string, flags *convertFlags, env *Environment, log logrus.FieldLogger) error {
	cfg, err := resolveConfig(flags, log)
	if err != nil {
		return err
	}
	warnIgnoredSettings(cfg, log)

	opts, err := converterOptions(cfg)
	if err != nil {
		return err
	}
	if env.Typesetter != nil {
		opts = append(opts, tex2chtml.WithTypesetter(env.Typesetter))
	}

	conv, err := tex2chtml.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer conv.Close()

	content, err := fileutil.ReadText(inputPath, fileutil.MaxDocumentSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	input := tex2chtml.Input{
		Standalone: cfg.Output.Standalone,
		Title:      cfg.Output.Title,
	}
	if flags.document.markdown || fileutil.IsMarkdownPath(inputPath) {
		input.Markdown = content
	} else {
		input.HTML = content
	}

	start := env.Now()
	result, err := conv.Convert(ctx, input)
	if errors.Is(err, tex2chtml.ErrTeX) {
		for _, rec := range result.Errors {
			fmt.Fprintln(env.Stderr, rec)
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("typesetting %s: %w%s", inputPath, err, renderHint(err, cfg))
	}

	log.Debugf("%s: %d script fragment(s), %s engine, %v",
		inputPath, result.Fragments, engineName(cfg.Engine), env.Now().Sub(start).Round(time.Millisecond))

	return writeOutput(flags.output, result.HTML, env)
}

// resolveConfig merges defaults, config file, environment and flags.
func resolveConfig(flags *convertFlags, log logrus.FieldLogger) (*config.Config, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(log)

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchedPaths(name)))
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags applies explicitly set CLI flags to cfg (CLI wins).
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	f := flags.typeset
	if f.engine != "" {
		cfg.Engine = f.engine
	}
	if f.timeout != "" {
		cfg.Timeout = f.timeout
	}
	if f.em != 0 {
		cfg.Em = f.em
	}
	if f.ex != 0 {
		cfg.Ex = f.ex
	}
	if f.packages != "" {
		cfg.Packages = tex2chtml.ParsePackages(f.packages)
	}
	if f.fontURL != "" {
		cfg.FontURL = f.fontURL
	}
	if f.mathJaxURL != "" {
		cfg.MathJaxURL = f.mathJaxURL
	}

	for _, def := range f.macros {
		name, expansion, ok := strings.Cut(def, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), `\`)
		if !ok || name == "" {
			return fmt.Errorf("%w: --macro %q must be name=expansion", ErrUsage, def)
		}
		if cfg.Macros == nil {
			cfg.Macros = make(map[string]string)
		}
		cfg.Macros[name] = expansion
	}

	if flags.document.standalone {
		cfg.Output.Standalone = true
	}
	if flags.document.title != "" {
		cfg.Output.Title = flags.document.title
	}
	return nil
}

// settingsFor maps the typesetting part of cfg onto library settings.
func settingsFor(cfg *config.Config) *tex2chtml.Settings {
	return &tex2chtml.Settings{
		EmSize:   cfg.Em,
		ExSize:   cfg.Ex,
		Packages: cfg.Packages,
		FontURL:  cfg.FontURL,
		Macros:   cfg.Macros,
	}
}

// warnIgnoredSettings warns about configured settings the selected engine
// does not use.
func warnIgnoredSettings(cfg *config.Config, log logrus.FieldLogger) {
	engine := engineName(cfg.Engine)
	for _, name := range settingsFor(cfg).IgnoredBy(engine) {
		log.Warnf("%s is ignored by the %s engine", name, engine)
	}
}

// converterOptions turns a validated config into converter options.
func converterOptions(cfg *config.Config) ([]tex2chtml.Option, error) {
	opts := []tex2chtml.Option{
		tex2chtml.WithEngine(cfg.Engine),
		tex2chtml.WithSettings(settingsFor(cfg)),
	}
	if cfg.MathJaxURL != "" {
		opts = append(opts, tex2chtml.WithMathJaxURL(cfg.MathJaxURL))
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, tex2chtml.WithTimeout(timeout))
	}
	return opts, nil
}

// writeOutput writes html to path, or to stdout when path is empty.
func writeOutput(path, html string, env *Environment) error {
	if path == "" {
		if _, err := fmt.Fprint(env.Stdout, html); err != nil {
			return fmt.Errorf("%w: stdout: %w", ErrWriteOutput, err)
		}
		return nil
	}

	if err := os.WriteFile(path, []byte(html), filePermissions); err != nil { // #nosec G306 -- output is a public HTML document
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// engineName returns the effective engine for display.
func engineName(engine string) string {
	if engine == "" {
		return tex2chtml.EngineMathJax
	}
	return strings.ToLower(engine)
}

// renderHint suggests a fix for an engine failure.
func renderHint(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, tex2chtml.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, tex2chtml.ErrMathJaxLoad):
		url := cfg.MathJaxURL
		if url == "" {
			url = tex2chtml.DefaultMathJaxURL
		}
		return hints.ForMathJaxLoad(url)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}

// formatError renders err with a hint when one applies.
func formatError(err error) string {
	msg := err.Error()

	switch {
	case errors.Is(err, tex2chtml.ErrUnknownPackage):
		msg += hints.ForUnknownPackage(tex2chtml.DefaultPackages())
	case errors.Is(err, ErrWriteOutput):
		msg += hints.ForOutputDirectory()
	}
	return msg
}

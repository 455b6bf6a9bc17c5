package main

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// typesetFlags holds engine and typesetting flags.
type typesetFlags struct {
	engine     string
	timeout    string
	em         float64
	ex         float64
	packages   string
	fontURL    string
	mathJaxURL string
	macros     []string // name=expansion, repeatable
}

// documentFlags holds input and output document flags.
type documentFlags struct {
	markdown   bool
	standalone bool
	title      string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	typeset  typesetFlags
	document documentFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress warnings")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show fragment counts and timing")
}

// addTypesetFlags adds typesetting flags to a FlagSet.
func addTypesetFlags(fs *flag.FlagSet, f *typesetFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "typesetting engine: mathjax, katex")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "typesetting timeout (e.g., 30s, 2m)")
	fs.Float64Var(&f.em, "em", 0, "em-size in pixels (default 16)")
	fs.Float64Var(&f.ex, "ex", 0, "ex-size in pixels (default 8)")
	fs.StringVar(&f.packages, "packages", "", "comma-separated TeX packages")
	fs.StringVar(&f.fontURL, "fontURL", "", "URL of the CommonHTML web fonts")
	fs.StringVar(&f.mathJaxURL, "mathjax-url", "", "MathJax component script (URL or local path)")
	fs.StringArrayVar(&f.macros, "macro", nil, "macro definition name=expansion (repeatable)")
}

// addDocumentFlags adds document flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.BoolVar(&f.markdown, "markdown", false, "treat input as Markdown")
	fs.BoolVar(&f.standalone, "standalone", false, "wrap an HTML fragment in a full document")
	fs.StringVar(&f.title, "title", "", "document title when wrapping")
}

// parseConvertFlags parses convert flags and returns positional args.
// Parse errors are returned unprinted; usage goes to usageOut on --help.
func parseConvertFlags(args []string, usageOut io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("tex2chtml", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")

	addCommonFlags(fs, &f.common)
	addTypesetFlags(fs, &f.typeset)
	addDocumentFlags(fs, &f.document)

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printConvertUsage(usageOut)
		}
		return nil, nil, err
	}

	return f, fs.Args(), nil
}


package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2chtml [options] file.html > converted.html")
	fmt.Fprintln(w, "       tex2chtml <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check the system for typesetting readiness")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tex2chtml help convert' for all options.")
}

// printConvertUsage prints usage for converting a document.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2chtml [options] file.html > converted.html")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Typeset the TeX math in an HTML document. Math written as")
	fmt.Fprintln(w, `<script type="math/tex"> or <script type="math/tex; mode=display">`)
	fmt.Fprintln(w, "is converted, as is $...$ and $$...$$ text. On any TeX error, every")
	fmt.Fprintln(w, "error is printed to stderr and nothing is written.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  file     HTML or Markdown (.md, .markdown) document. To convert a")
	fmt.Fprintln(w, "           file named help, version or doctor, write -- help or ./help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --markdown            Treat input as Markdown")
	fmt.Fprintln(w, "      --standalone          Wrap an HTML fragment in a full document")
	fmt.Fprintln(w, "      --title <s>           Document title when wrapping")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Typesetting:")
	fmt.Fprintln(w, "  -e, --engine <s>          Engine: mathjax (default), katex")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --em <n>              em-size in pixels (default 16)")
	fmt.Fprintln(w, "      --ex <n>              ex-size in pixels (default 8)")
	fmt.Fprintln(w, "      --packages <list>     Comma-separated TeX packages")
	fmt.Fprintln(w, "                            (default: all but noerrors, noundefined)")
	fmt.Fprintln(w, "      --fontURL <url>       URL of the CommonHTML web fonts")
	fmt.Fprintln(w, "      --mathjax-url <url>   MathJax component script (URL or local path)")
	fmt.Fprintln(w, "      --macro <name=tex>    Define a macro (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Suppress warnings")
	fmt.Fprintln(w, "  -v, --verbose             Show fragment counts and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "With --engine katex, --packages, --fontURL and --ex have no effect")
	fmt.Fprintln(w, "and a warning is printed when they are set.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status: 0 ok, 1 TeX errors, 2 usage, 3 I/O. An engine failure")
	fmt.Fprintln(w, "is logged to stderr, writes nothing and exits 0.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tex2chtml doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the KaTeX runtime, and the environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output results as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tex2chtml version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tex2chtml help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

package main

// Notes:
// - runMain is exercised end to end with a fake Typesetter injected through
//   Environment, so no browser or JavaScript runtime is needed.
// - Tests that set TEX2CHTML_* variables live in env_config_test.go and do
//   not run in parallel.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tex2chtml "github.com/alnah/go-tex2chtml"
)

// ---------------------------------------------------------------------------
// TestIsCommand
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg  string
		want bool
	}{
		{"version", true},
		{"help", true},
		{"doctor", true},
		{"page.html", false},
		{"--em", false},
		{"convert", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isCommand(tt.arg); got != tt.want {
			t.Errorf("isCommand(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Commands
// ---------------------------------------------------------------------------

func TestRunMain_NoArgs(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := newTestEnv(&fakeTypesetter{})
	code := runMain([]string{"tex2chtml"}, env)

	if code != ExitUsage {
		t.Errorf("exit = %d, want %d", code, ExitUsage)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Usage: tex2chtml") {
		t.Errorf("stderr should contain usage, got %q", stderr.String())
	}
}

func TestRunMain_Version(t *testing.T) {
	t.Parallel()

	env, stdout, _ := newTestEnv(nil)
	if code := runMain([]string{"tex2chtml", "version"}, env); code != ExitSuccess {
		t.Errorf("exit = %d, want 0", code)
	}
	if got := stdout.String(); got != "tex2chtml "+Version+"\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunMain_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"help", []string{"help"}, ExitSuccess, "Commands:"},
		{"help convert", []string{"help", "convert"}, ExitSuccess, "--mathjax-url"},
		{"help doctor", []string{"help", "doctor"}, ExitSuccess, "--json"},
		{"long flag", []string{"--help"}, ExitSuccess, "--fontURL"},
		{"short flag", []string{"-h"}, ExitSuccess, "--packages"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := newTestEnv(&fakeTypesetter{})
			code := runMain(append([]string{"tex2chtml"}, tt.args...), env)

			if code != tt.wantCode {
				t.Errorf("exit = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("stdout should contain %q, got %q", tt.wantOut, stdout.String())
			}
		})
	}
}

func TestRunMain_HelpUnknownCommand(t *testing.T) {
	t.Parallel()

	env, _, stderr := newTestEnv(nil)
	if code := runMain([]string{"tex2chtml", "help", "nope"}, env); code != ExitUsage {
		t.Errorf("exit = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "Unknown command: nope") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Usage Errors
// ---------------------------------------------------------------------------

func TestRunMain_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"unknown flag", []string{"--bogus", "x.html"}, "unknown flag: --bogus"},
		{"no input", []string{"--em", "16"}, "expected exactly one input file, got 0"},
		{"two inputs", []string{"a.html", "b.html"}, "expected exactly one input file, got 2"},
		{"bad float", []string{"--em", "big", "x.html"}, "invalid argument"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := &fakeTypesetter{}
			env, stdout, stderr := newTestEnv(ts)
			code := runMain(append([]string{"tex2chtml"}, tt.args...), env)

			if code != ExitUsage {
				t.Errorf("exit = %d, want %d", code, ExitUsage)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout should be empty, got %q", stdout.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr should contain %q, got %q", tt.wantStderr, stderr.String())
			}
			if ts.gotHTML != "" {
				t.Error("typesetter should not run on usage errors")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Conversion
// ---------------------------------------------------------------------------

func TestRunMain_Success(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html",
		`<p>Let <script type="math/tex">x</script>.</p><script type="math/tex; mode=display">y</script>`)

	ts := &fakeTypesetter{}
	env, stdout, stderr := newTestEnv(ts)
	code := runMain([]string{"tex2chtml", input}, env)

	if code != ExitSuccess {
		t.Fatalf("exit = %d, want 0; stderr = %q", code, stderr.String())
	}
	if got := stdout.String(); got != `<p>Let <m>x</m>.</p><m>y</m>` {
		t.Errorf("stdout = %q", got)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr should be empty on success, got %q", stderr.String())
	}
	if ts.gotHTML != `<p>Let $x$.</p>$$y$$` {
		t.Errorf("typesetter saw %q", ts.gotHTML)
	}
}

func TestRunMain_TeXErrors(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html",
		`<p><script type="math/tex">\bad one</script> <script type="math/tex">ok</script>`+
			` <script type="math/tex; mode=display">\bad two</script></p>`)
	output := filepath.Join(t.TempDir(), "out.html")

	env, stdout, stderr := newTestEnv(&fakeTypesetter{})
	code := runMain([]string{"tex2chtml", "-o", output, input}, env)

	if code != ExitGeneral {
		t.Errorf("exit = %d, want %d", code, ExitGeneral)
	}
	want := "TeX error: Undefined control sequence \\bad in \\bad one\n" +
		"TeX error: Undefined control sequence \\bad in \\bad two\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("output file should not be written when fragments fail")
	}
}

func TestRunMain_OutputFile(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)
	output := filepath.Join(t.TempDir(), "out.html")

	env, stdout, _ := newTestEnv(&fakeTypesetter{})
	if code := runMain([]string{"tex2chtml", "--output", output, input}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, want 0", code)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "<m>x</m>" {
		t.Errorf("output = %q", data)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty with -o, got %q", stdout.String())
	}
}

func TestRunMain_OutputDirMissing(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", "<p>x</p>")
	output := filepath.Join(t.TempDir(), "missing", "out.html")

	env, _, stderr := newTestEnv(&fakeTypesetter{})
	if code := runMain([]string{"tex2chtml", "-o", output, input}, env); code != ExitIO {
		t.Errorf("exit = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "hint: check parent directory") {
		t.Errorf("stderr should carry the output hint, got %q", stderr.String())
	}
}

func TestRunMain_MissingInput(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := newTestEnv(&fakeTypesetter{})
	code := runMain([]string{"tex2chtml", filepath.Join(t.TempDir(), "nope.html")}, env)

	if code != ExitIO {
		t.Errorf("exit = %d, want %d", code, ExitIO)
	}
	if stdout.Len() != 0 {
		t.Error("stdout should be empty")
	}
	if !strings.HasPrefix(stderr.String(), "error: ") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunMain_EmptyInput(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "empty.html", "")

	ts := &fakeTypesetter{}
	env, stdout, stderr := newTestEnv(ts)
	if code := runMain([]string{"tex2chtml", input}, env); code != ExitSuccess {
		t.Errorf("exit = %d, want %d; stderr = %q", code, ExitSuccess, stderr.String())
	}
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("stdout = %q, stderr = %q, want both empty", stdout.String(), stderr.String())
	}
	if ts.gotOpts != nil {
		t.Error("typesetter should not run on an empty document")
	}
}

func TestRunMain_EngineFailure(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)

	env, stdout, stderr := newTestEnv(&fakeTypesetter{err: tex2chtml.ErrBrowserConnect})
	code := runMain([]string{"tex2chtml", input}, env)

	// No TeX error records, so the run does not fail.
	if code != ExitSuccess {
		t.Errorf("exit = %d, want %d", code, ExitSuccess)
	}
	if stdout.Len() != 0 {
		t.Error("stdout should be empty")
	}
	if strings.Contains(stderr.String(), "TeX error") {
		t.Errorf("engine failure must not produce TeX records: %q", stderr.String())
	}
	if !strings.HasPrefix(stderr.String(), "error: typesetting ") {
		t.Errorf("engine failure should be logged, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "--engine katex") {
		t.Errorf("stderr should carry the browser hint, got %q", stderr.String())
	}
}

func TestRunMain_EngineFailureQuiet(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)

	env, _, stderr := newTestEnv(&fakeTypesetter{err: tex2chtml.ErrMathJaxLoad})
	if code := runMain([]string{"tex2chtml", "-q", input}, env); code != ExitSuccess {
		t.Errorf("exit = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stderr.String(), "MathJax did not load") {
		t.Errorf("errors are logged even with --quiet, got %q", stderr.String())
	}
}

func TestRunMain_InvalidSettings(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", "<p>x</p>")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown package", []string{"--packages", "base,tikz"}, "hint: available:"},
		{"bad engine", []string{"--engine", "jsmath"}, "engine"},
		{"bad timeout", []string{"--timeout", "soon"}, "timeout"},
		{"negative em", []string{"--em", "-3"}, "em"},
		{"bad macro", []string{"--macro", "novalue"}, "name=expansion"},
		{"bad macro name", []string{"--macro", "R2=x"}, "macro name"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := newTestEnv(&fakeTypesetter{})
			args := append(append([]string{"tex2chtml"}, tt.args...), input)
			if code := runMain(args, env); code != ExitUsage {
				t.Errorf("exit = %d, want %d; stderr = %q", code, ExitUsage, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr should contain %q, got %q", tt.want, stderr.String())
			}
		})
	}
}

func TestRunMain_TypesetFlags(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)

	ts := &fakeTypesetter{}
	env, _, stderr := newTestEnv(ts)
	code := runMain([]string{
		"tex2chtml",
		"--em", "20", "--ex", "10",
		"--packages", "base, ams",
		"--fontURL", "/fonts",
		"--macro", `\R=\mathbb{R}`,
		"--macro", "N=\\mathbb{N}",
		input,
	}, env)
	if code != ExitSuccess {
		t.Fatalf("exit = %d; stderr = %q", code, stderr.String())
	}

	opts := ts.gotOpts
	if opts.EmSize != 20 || opts.ExFactor != 0.5 {
		t.Errorf("EmSize = %v, ExFactor = %v", opts.EmSize, opts.ExFactor)
	}
	if strings.Join(opts.Packages, ",") != "base,ams" {
		t.Errorf("Packages = %v", opts.Packages)
	}
	if opts.FontURL != "/fonts" {
		t.Errorf("FontURL = %q", opts.FontURL)
	}
	if opts.Macros["R"] != `\mathbb{R}` || opts.Macros["N"] != `\mathbb{N}` {
		t.Errorf("Macros = %v", opts.Macros)
	}
	if _, ok := opts.Macros["relax"]; !ok {
		t.Error("neutralization table should still apply")
	}
}

func TestRunMain_Markdown(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "notes.md", "# Notes\n\nLet $a_1 * b_2$ hold.\n")

	ts := &fakeTypesetter{}
	env, stdout, stderr := newTestEnv(ts)
	code := runMain([]string{"tex2chtml", "--title", "Notes", input}, env)
	if code != ExitSuccess {
		t.Fatalf("exit = %d; stderr = %q", code, stderr.String())
	}

	if !strings.Contains(ts.gotHTML, "$a_1 * b_2$") {
		t.Errorf("math should survive Markdown conversion, got %q", ts.gotHTML)
	}
	if !strings.Contains(stdout.String(), "<title>Notes</title>") {
		t.Errorf("stdout should be a titled document, got %q", stdout.String())
	}
}

func TestRunMain_Standalone(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "frag.html", `<p><script type="math/tex">x</script></p>`)

	env, stdout, _ := newTestEnv(&fakeTypesetter{})
	if code := runMain([]string{"tex2chtml", "--standalone", input}, env); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "<!DOCTYPE html>") {
		t.Errorf("stdout should be a full document, got %q", stdout.String())
	}
}

func TestRunMain_Verbose(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)

	env, _, stderr := newTestEnv(&fakeTypesetter{})
	if code := runMain([]string{"tex2chtml", "-v", input}, env); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stderr.String(), "1 script fragment(s), mathjax engine") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunMain_NotVerbose(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)

	env, _, stderr := newTestEnv(&fakeTypesetter{})
	if code := runMain([]string{"tex2chtml", input}, env); code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if strings.Contains(stderr.String(), "script fragment(s)") {
		t.Errorf("fragment count is debug output, got %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Engine-specific settings
// ---------------------------------------------------------------------------

func TestRunMain_KaTeXIgnoredSettings(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)

	tests := []struct {
		name     string
		args     []string
		warnings []string
	}{
		{"defaults", []string{"--engine", "katex"}, nil},
		{"packages", []string{"--engine", "katex", "--packages", "base,ams"}, []string{"warning: packages is ignored by the katex engine"}},
		{"font url", []string{"--engine", "katex", "--fontURL", "/fonts"}, []string{"warning: fontURL is ignored by the katex engine"}},
		{"ex size", []string{"--engine", "katex", "--ex", "9"}, []string{"warning: ex is ignored by the katex engine"}},
		{"all three", []string{"-e", "katex", "--ex", "9", "--fontURL", "/f", "--packages", "base"}, []string{
			"warning: packages is ignored",
			"warning: fontURL is ignored",
			"warning: ex is ignored",
		}},
		{"mathjax uses them", []string{"--packages", "base,ams", "--ex", "9"}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := newTestEnv(&fakeTypesetter{})
			if code := runMain(append(append([]string{"tex2chtml"}, tt.args...), input), env); code != ExitSuccess {
				t.Fatalf("exit = %d; stderr = %q", code, stderr.String())
			}
			if tt.warnings == nil && stderr.Len() != 0 {
				t.Errorf("unexpected stderr %q", stderr.String())
			}
			for _, w := range tt.warnings {
				if !strings.Contains(stderr.String(), w) {
					t.Errorf("stderr should contain %q, got %q", w, stderr.String())
				}
			}
		})
	}
}

func TestRunMain_KaTeXIgnoredSettingsQuiet(t *testing.T) {
	t.Parallel()

	input := writeFile(t, "page.html", `<script type="math/tex">x</script>`)

	env, _, stderr := newTestEnv(&fakeTypesetter{})
	code := runMain([]string{"tex2chtml", "-q", "-e", "katex", "--packages", "base", input}, env)
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if stderr.Len() != 0 {
		t.Errorf("--quiet should hide warnings, got %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Files named like commands
// ---------------------------------------------------------------------------

func TestRunMain_FileNamedLikeCommand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"help", "version", "doctor"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`<script type="math/tex">x</script>`), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	tests := []struct {
		name string
		args []string
	}{
		{"double dash help", []string{"--", "help"}},
		{"double dash version", []string{"--", "version"}},
		{"double dash doctor", []string{"-v", "--", "doctor"}},
		{"dot slash help", []string{"./help"}},
		{"dot slash version", []string{"./version"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			env, stdout, stderr := newTestEnv(&fakeTypesetter{})
			code := runMain(append([]string{"tex2chtml"}, tt.args...), env)

			if code != ExitSuccess {
				t.Fatalf("exit = %d; stderr = %q", code, stderr.String())
			}
			if stdout.String() != "<m>x</m>" {
				t.Errorf("stdout = %q, want the converted file", stdout.String())
			}
		})
	}
}

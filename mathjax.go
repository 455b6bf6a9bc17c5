package tex2chtml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-tex2chtml/internal/fileutil"
	"github.com/alnah/go-tex2chtml/internal/pipeline"
	"github.com/alnah/go-tex2chtml/internal/process"
)

// Element ids of the scripts injected into the page. Both are removed
// before the document is serialized.
const (
	configScriptID = "tex2chtml-config"
	loaderScriptID = "tex2chtml-mathjax"
)

// pageRenderer loads an HTML file that carries the MathJax config and
// loader, waits for the initial typeset and returns the serialized page.
// Abstracted so the typesetter can be tested without a browser.
type pageRenderer interface {
	RenderFile(ctx context.Context, filePath string) (*pageResult, error)
	Close() error
}

// Compile-time interface check.
var _ pageRenderer = (*rodRenderer)(nil)

// pageResult is what the collect script reports back from the page.
type pageResult struct {
	Loaded bool           `json:"loaded"`
	HTML   string         `json:"html"`
	Errors []mathJaxError `json:"errors"`
}

// mathJaxError is one fragment recorded by the compileError hook.
type mathJaxError struct {
	Latex   string `json:"latex"`
	Message string `json:"message"`
	Display bool   `json:"display"`
}

// collectScript waits for MathJax's initial typeset, strips the injected
// scripts and serializes the page.
const collectScript = `async () => {
	const state = window.__tex2chtml || {errors: []};
	const mj = window.MathJax;
	if (!mj || !mj.startup || !mj.startup.promise) {
		return JSON.stringify({loaded: false, html: "", errors: []});
	}
	await mj.startup.promise;
	for (const id of ["` + configScriptID + `", "` + loaderScriptID + `"]) {
		const el = document.getElementById(id);
		if (el) el.remove();
	}
	let doctype = "";
	if (document.doctype) {
		doctype = "<!DOCTYPE " + document.doctype.name + ">\n";
	}
	return JSON.stringify({
		loaded: true,
		html: doctype + document.documentElement.outerHTML,
		errors: state.errors,
	});
}`

// configTemplate sets up window.MathJax before the loader runs.
// formatError rethrows so every failed fragment reaches compileError,
// which records it and then falls back to MathJax's own error node.
const configTemplate = `window.__tex2chtml = {errors: []};
window.MathJax = %s;
MathJax.tex.formatError = function (jax, err) { throw err; };
MathJax.options.compileError = function (doc, math, err) {
	window.__tex2chtml.errors.push({
		latex: math.math,
		message: String((err && err.message) || err),
		display: !!math.display,
	});
	doc.compileError(math, err);
};
MathJax.startup = {
	ready: function () {
		MathJax.startup.defaultReady();
		MathJax.startup.adaptor.fontSize = function () { return %s; };
	},
};`

// mathJaxConfig is the JSON part of window.MathJax.
type mathJaxConfig struct {
	Tex struct {
		Packages            []string          `json:"packages"`
		InlineMath          [][2]string       `json:"inlineMath"`
		ProcessEnvironments bool              `json:"processEnvironments"`
		Macros              map[string]string `json:"macros"`
	} `json:"tex"`
	CHTML struct {
		FontURL  string  `json:"fontURL"`
		ExFactor float64 `json:"exFactor"`
	} `json:"chtml"`
	Options struct {
		EnableMenu bool `json:"enableMenu"`
	} `json:"options"`
}

// buildMathJaxConfig renders the inline config script for opts.
func buildMathJaxConfig(opts *TypesetOptions) (string, error) {
	var cfg mathJaxConfig
	cfg.Tex.Packages = opts.Packages
	cfg.Tex.InlineMath = [][2]string{opts.InlineMath}
	cfg.Tex.ProcessEnvironments = opts.ProcessEnvironments
	cfg.Tex.Macros = opts.Macros
	if cfg.Tex.Macros == nil {
		cfg.Tex.Macros = map[string]string{}
	}
	cfg.CHTML.FontURL = opts.FontURL
	cfg.CHTML.ExFactor = opts.ExFactor

	data, err := json.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "encoding MathJax config")
	}
	em := strconv.FormatFloat(opts.EmSize, 'g', -1, 64)
	return fmt.Sprintf(configTemplate, data, em), nil
}

// mathJaxTypesetter typesets with MathJax v3 (CommonHTML output) inside
// headless Chrome.
type mathJaxTypesetter struct {
	renderer  pageRenderer
	scriptURL string
}

// newMathJaxTypesetter creates a typesetter backed by a lazily launched
// browser.
func newMathJaxTypesetter(timeout time.Duration, scriptURL string) *mathJaxTypesetter {
	return &mathJaxTypesetter{
		renderer:  newRodRenderer(timeout),
		scriptURL: scriptURL,
	}
}

// Typeset injects the MathJax config and loader into doc, renders the page
// and reports each recorded fragment to onError.
func (t *mathJaxTypesetter) Typeset(ctx context.Context, doc string, opts *TypesetOptions, onError ErrorHandler) (string, error) {
	src, err := pipeline.ResolveScriptURL(t.scriptURL)
	if err != nil {
		return "", err
	}

	cfgJS, err := buildMathJaxConfig(opts)
	if err != nil {
		return "", err
	}

	page := pipeline.InjectIntoHead(doc,
		pipeline.InlineScript(configScriptID, cfgJS)+pipeline.ExternalScript(loaderScriptID, src))

	tmpPath, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return "", err
	}
	defer cleanup()

	res, err := t.renderer.RenderFile(ctx, tmpPath)
	if err != nil {
		return "", err
	}
	if !res.Loaded {
		return "", errors.Newf("%w: %s", ErrMathJaxLoad, src)
	}

	for _, e := range res.Errors {
		if onError != nil {
			onError(FragmentError{Source: e.Latex, Message: e.Message, Display: e.Display})
		}
	}
	return res.HTML, nil
}

// Close shuts the browser down.
func (t *mathJaxTypesetter) Close() error {
	if t.renderer != nil {
		return t.renderer.Close()
	}
	return nil
}

// rodRenderer implements pageRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// newRodRenderer creates a rodRenderer with the given timeout.
func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	// Pages load MathJax from a CDN while living on file://.
	l = l.Set("allow-file-access-from-files")

	u, err := l.Launch()
	if err != nil {
		return errors.Newf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.killLauncher()
		return errors.Newf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources, killing the whole process tree.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

// killLauncher stops the launched browser and removes its profile dir.
func (r *rodRenderer) killLauncher() {
	if r.launcher == nil {
		return
	}
	process.KillTree(r.launcher.PID())
	r.launcher.Kill()
	r.launcher.Cleanup()
	r.launcher = nil
}

// RenderFile opens a local HTML file in headless Chrome, waits for MathJax
// and collects the typeset page.
func (r *rodRenderer) RenderFile(ctx context.Context, filePath string) (*pageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, errors.Newf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	p := page.Context(ctx).Timeout(timeout)

	if err := p.WaitLoad(); err != nil {
		return nil, errors.Newf("%w: %v", ErrPageLoad, err)
	}

	obj, err := p.Eval(collectScript)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Newf("%w: %v", ErrPageLoad, err)
	}

	var res pageResult
	if err := json.Unmarshal([]byte(obj.Value.Str()), &res); err != nil {
		return nil, errors.Newf("%w: decoding page result: %v", ErrPageLoad, err)
	}
	return &res, nil
}

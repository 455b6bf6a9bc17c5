package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	tex2chtml "github.com/alnah/go-tex2chtml"
	"github.com/alnah/go-tex2chtml/internal/pipeline"
)

// fakeTypesetter renders $...$ bodies as <m>body</m> and reports any body
// starting with \bad as a TeX error.
type fakeTypesetter struct {
	err     error
	gotHTML string
	gotOpts *tex2chtml.TypesetOptions
}

func (f *fakeTypesetter) Typeset(ctx context.Context, doc string, opts *tex2chtml.TypesetOptions, onError tex2chtml.ErrorHandler) (string, error) {
	f.gotHTML = doc
	f.gotOpts = opts
	if f.err != nil {
		return "", f.err
	}

	var out strings.Builder
	for _, seg := range pipeline.SplitMath(doc) {
		switch {
		case seg.Math == nil:
			out.WriteString(seg.Text)
		case strings.HasPrefix(seg.Math.Body, `\bad`):
			onError(tex2chtml.FragmentError{Source: seg.Math.Body, Message: `Undefined control sequence \bad`})
			out.WriteString(seg.Text)
		default:
			out.WriteString("<m>" + seg.Math.Body + "</m>")
		}
	}
	return out.String(), nil
}

func (f *fakeTypesetter) Close() error { return nil }

// newTestEnv returns an Environment with captured output and a fake engine.
func newTestEnv(ts tex2chtml.Typesetter) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:        func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
		Stdout:     &stdout,
		Stderr:     &stderr,
		Typesetter: ts,
	}
	return env, &stdout, &stderr
}

// writeFile creates name with content in a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// testLogger returns the logger runConvertCmd would build for flags.
func testLogger(env *Environment, flags *convertFlags) *logrus.Logger {
	return newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
}

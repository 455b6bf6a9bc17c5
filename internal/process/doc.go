// Package process stops browser process trees left behind by the MathJax
// engine.
package process

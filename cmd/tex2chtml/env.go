package main

import (
	"io"
	"os"
	"time"

	tex2chtml "github.com/alnah/go-tex2chtml"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// Typesetter replaces the engine selected by --engine when non-nil.
	Typesetter tex2chtml.Typesetter
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

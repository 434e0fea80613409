package main

import (
	"io"
	"os"
	"os/exec"
	"time"

	nb2pdf "github.com/alnah/go-nb2pdf"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, program lookup and converter pool creation.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	LookPath    func(file string) (string, error)
	NewPool     func(size int, opts ...nb2pdf.Option) Pool
	AdjustProcs bool // tune GOMAXPROCS at startup
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LookPath:    exec.LookPath,
		NewPool:     newConverterPool,
		AdjustProcs: true,
	}
}

package main

// Notes:
// - This file contains mocks and fixtures shared by the CLI tests.
// - mockPool hands out a single mockConverter so tests can inspect every
//   Input the batch produced, in any order.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	nb2pdf "github.com/alnah/go-nb2pdf"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var testNow = time.Date(2024, time.March, 15, 9, 5, 0, 0, time.UTC)

const testNotebook = `{"nbformat": 4, "nbformat_minor": 5, "metadata": {}, "cells": [
  {"cell_type": "code", "source": "print(1)", "outputs": []}
]}`

// writeNotebook writes a minimal notebook at dir/name, creating parents.
func writeNotebook(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(testNotebook), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

// mockConverter records inputs and returns a fixed result.
type mockConverter struct {
	mu       sync.Mutex
	inputs   []nb2pdf.Input
	err      error
	errFor   string // only fail for this path when set
	executed bool
	execErr  error // recovered execution failure reported when not executed
}

func (m *mockConverter) Convert(_ context.Context, in nb2pdf.Input) (*nb2pdf.ConvertResult, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if m.err != nil && (m.errFor == "" || m.errFor == in.Path) {
		return nil, m.err
	}
	res := &nb2pdf.ConvertResult{Cells: 1, Pages: 1, Executed: m.executed, ExecErr: m.execErr}
	if !in.HTMLOnly {
		res.PDF = []byte("%PDF-1.4 mock")
	}
	if in.HTML || in.HTMLOnly {
		res.HTML = []byte("<html></html>")
	}
	return res, nil
}

// paths returns the converted notebook paths, sorted.
func (m *mockConverter) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.inputs))
	for _, in := range m.inputs {
		out = append(out, in.Path)
	}
	sort.Strings(out)
	return out
}

func (m *mockConverter) lastInput(t *testing.T) nb2pdf.Input {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		t.Fatal("converter was never called")
	}
	return m.inputs[len(m.inputs)-1]
}

// mockPool implements Pool around one mockConverter.
type mockPool struct {
	conv       *mockConverter
	size       int
	opts       int
	acquireErr error
	closed     bool
}

func (p *mockPool) Acquire() (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}

func (p *mockPool) Release(CLIConverter) {}

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) Close() error {
	p.closed = true
	return nil
}

// testEnv returns an environment writing to buffers. Jupyter is reported
// missing unless jupyter is true; created pools are returned through pool.
func testEnv(conv *mockConverter, jupyter bool) (env *Environment, stdout, stderr *bytes.Buffer, pool *mockPool) {
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	pool = &mockPool{conv: conv}
	env = &Environment{
		Now:    func() time.Time { return testNow },
		Stdout: stdout,
		Stderr: stderr,
		LookPath: func(file string) (string, error) {
			if jupyter {
				return "/usr/bin/" + file, nil
			}
			return "", errors.New("executable file not found in $PATH")
		},
		NewPool: func(size int, opts ...nb2pdf.Option) Pool {
			pool.size = size
			pool.opts = len(opts)
			return pool
		},
	}
	return env, stdout, stderr, pool
}

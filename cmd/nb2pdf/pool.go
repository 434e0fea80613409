package main

import (
	"context"

	nb2pdf "github.com/alnah/go-nb2pdf"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input nb2pdf.Input) (*nb2pdf.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*nb2pdf.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// converterPool adapts nb2pdf.ConverterPool to Pool.
type converterPool struct {
	pool *nb2pdf.ConverterPool
}

// Compile-time interface implementation check.
var _ Pool = (*converterPool)(nil)

func newConverterPool(size int, opts ...nb2pdf.Option) Pool {
	return &converterPool{pool: nb2pdf.NewConverterPool(size, opts...)}
}

func (p *converterPool) Acquire() (CLIConverter, error) {
	conv, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (p *converterPool) Release(c CLIConverter) {
	if conv, ok := c.(*nb2pdf.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *converterPool) Size() int { return p.pool.Size() }

func (p *converterPool) Close() error { return p.pool.Close() }

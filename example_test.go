package nb2pdf_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-nb2pdf"
)

const exampleNotebook = `{"nbformat": 4, "nbformat_minor": 5, "metadata": {}, "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": "# Results"},
  {"cell_type": "code", "metadata": {}, "source": "print(6 * 7)",
   "outputs": [{"output_type": "stream", "name": "stdout", "text": "42\n"}]}
]}`

// Example renders a notebook with its saved outputs. The native engine
// needs neither Jupyter nor a browser.
func Example() {
	conv, err := nb2pdf.NewConverter()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer conv.Close()

	result, err := conv.Convert(context.Background(), nb2pdf.Input{
		Reader:        strings.NewReader(exampleNotebook),
		StudentName:   "Ada Lovelace",
		SkipExecution: true,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("PDF:", strings.HasPrefix(string(result.PDF), "%PDF-"))
	fmt.Println("cells:", result.Cells)
	// Output:
	// PDF: true
	// cells: 2
}

// ExampleConverter_Convert_html produces the HTML rendition only.
func ExampleConverter_Convert_html() {
	conv, err := nb2pdf.NewConverter(nb2pdf.WithExecutor(nil), nb2pdf.WithTitle("Lab 1"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer conv.Close()

	result, err := conv.Convert(context.Background(), nb2pdf.Input{
		Reader:   strings.NewReader(exampleNotebook),
		Date:     "literal date",
		HTMLOnly: true,
		Now:      time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	html := string(result.HTML)
	fmt.Println(strings.Contains(html, "<h1>Lab 1</h1>"))
	fmt.Println(strings.Contains(html, "stdout: 42"))
	fmt.Println(result.PDF == nil)
	// Output:
	// true
	// true
	// true
}

// ExampleConverterPool converts several notebooks concurrently.
func ExampleConverterPool() {
	pool := nb2pdf.NewConverterPool(2, nb2pdf.WithExecutor(nil))
	defer pool.Close()

	students := []string{"Ada", "Grace", "Linus"}
	pages := make([]int, len(students))

	var wg sync.WaitGroup
	for i, name := range students {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.Acquire()
			if err != nil {
				return
			}
			defer pool.Release(conv)

			res, err := conv.Convert(context.Background(), nb2pdf.Input{
				Reader:      strings.NewReader(exampleNotebook),
				StudentName: name,
			})
			if err == nil {
				pages[i] = res.Pages
			}
		}()
	}
	wg.Wait()

	fmt.Println(pages)
	// Output: [1 1 1]
}

package nb2pdf

// Notes:
// - The HTML produced with the built-in template is parsed with
//   golang.org/x/net/html to check its structure, not its exact text.

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// countElements walks n and counts elements by tag, and block divs by class.
func countElements(n *html.Node, tags map[atom.Atom]int, classes map[string]int) {
	if n.Type == html.ElementNode {
		tags[n.DataAtom]++
		for _, a := range n.Attr {
			if a.Key == "class" {
				for _, c := range strings.Fields(a.Val) {
					classes[c]++
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		countElements(c, tags, classes)
	}
}

func TestConvert_HTMLStructure(t *testing.T) {
	t.Parallel()

	nb := `{"nbformat": 4, "nbformat_minor": 5, "metadata": {}, "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": "<b>not bold</b>"},
  {"cell_type": "code", "metadata": {}, "source": "plot()", "outputs": [
    {"output_type": "display_data", "metadata": {}, "data": {"text/plain": "<Figure>", "image/png": "` + pngPayload(t, 8, 8) + `"}},
    {"output_type": "error", "ename": "ValueError", "evalue": "bad", "traceback": []}
  ]}
]}`
	path := writeNotebook(t, t.TempDir(), "lab.ipynb", nb)

	conv := newTestConverter(t, WithExecutor(nil))
	res, err := conv.Convert(context.Background(), Input{Path: path, StudentName: "Ada", HTMLOnly: true, Now: testNow})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	doc, err := html.Parse(strings.NewReader(string(res.HTML)))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}

	tags := map[atom.Atom]int{}
	classes := map[string]int{}
	countElements(doc, tags, classes)

	wantTags := map[atom.Atom]int{atom.H1: 1, atom.Img: 1, atom.B: 0}
	for tag, want := range wantTags {
		if got := tags[tag]; got != want {
			t.Errorf("<%s> count = %d, want %d", tag, got, want)
		}
	}

	wantClasses := map[string]int{
		"block-section-marker": 2,
		"block-markdown":       1,
		"block-code":           1,
		"block-output":         1,
		"block-image":          1,
		"block-error":          1,
	}
	for class, want := range wantClasses {
		if got := classes[class]; got != want {
			t.Errorf(".%s count = %d, want %d", class, got, want)
		}
	}
}

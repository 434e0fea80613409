package report

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"unicode"

	// Payloads labeled image/png are not always PNG.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrImageDecode indicates an image payload could not be decoded.
var ErrImageDecode = errors.New("image decode failed")

// MaxImagePixels bounds the pixel count of an image before it is decoded.
const MaxImagePixels = 50_000_000

var (
	errEmptyImage    = errors.New("image has zero width or height")
	errImageTooLarge = errors.New("image too large")
)

// decodeImage decodes a base64 image payload in memory and fits it into
// the usable page width. Images are shrunk to fit, never enlarged, and
// keep their aspect ratio; the result is centered horizontally.
func decodeImage(payload string, geo Geometry) (*Image, error) {
	data, err := base64.StdEncoding.DecodeString(stripSpace(payload))
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errEmptyImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d pixels (max %d)", errImageTooLarge, cfg.Width, cfg.Height, MaxImagePixels)
	}

	// Full decode catches truncated or corrupt pixel data.
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	px := img.Bounds().Size()

	x, w, h := fitImage(px.X, px.Y, geo)
	return &Image{
		Data:        data,
		Format:      format,
		PixelWidth:  px.X,
		PixelHeight: px.Y,
		X:           x,
		Width:       w,
		Height:      h,
	}, nil
}

// fitImage computes the placement of a pxW×pxH image in millimeters.
func fitImage(pxW, pxH int, geo Geometry) (x, w, h float64) {
	usable := geo.UsableWidth()
	nativeW := float64(pxW) * mmPerInch / geo.DPI
	nativeH := float64(pxH) * mmPerInch / geo.DPI

	w = min(usable, nativeW)
	h = nativeH * (w / nativeW)
	x = geo.LeftMargin + (usable-w)/2
	return x, w, h
}

// stripSpace removes line breaks and other whitespace some notebook
// writers insert into base64 payloads.
func stripSpace(s string) string {
	if !strings.ContainsFunc(s, unicode.IsSpace) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits config files to 1MB.
var MaxInputSize = 1 << 20

var (
	errEmptyData     = errors.New("empty config data")
	errInputTooLarge = errors.New("config exceeds maximum size")
)

// decodeStrict unmarshals data into v, rejecting unknown fields.
func decodeStrict(data []byte, v any) error {
	if len(data) == 0 {
		return errEmptyData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", errInputTooLarge, len(data), MaxInputSize)
	}
	return yaml.UnmarshalWithOptions(data, v, yaml.Strict())
}

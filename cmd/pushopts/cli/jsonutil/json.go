// Package jsonutil provides JSON utilities with consistent formatting.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalIndentWithNewline is like json.MarshalIndent but adds a trailing newline
// and leaves <, > and & unescaped.
func MarshalIndentWithNewline(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteIndented writes v to w as two-space indented JSON.
func WriteIndented(w io.Writer, v any) error {
	return encode(w, v, "", "  ")
}

func encode(w io.Writer, v any, prefix, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

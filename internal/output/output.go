// Package output renders command results as YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/mockexam/internal/pagemap"
)

// Format defines the output format for CLI commands.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, "":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want yaml or json)", s)
	}
}

// Write writes data to w in the given format.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// Warning is the printable form of a pagemap.Warning.
type Warning struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// Warnings converts resolution warnings for printing.
func Warnings(ws []pagemap.Warning) []Warning {
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, Warning{Kind: w.Kind(), Message: w.String()})
	}
	return out
}

// Resolution is the printable form of a pagemap.Resolution.
type Resolution struct {
	Key      string         `json:"key" yaml:"key"`
	Method   pagemap.Method `json:"method" yaml:"method"`
	Map      *pagemap.Map   `json:"map" yaml:"map"`
	Answers  *pagemap.Map   `json:"answers" yaml:"answers"`
	Warnings []Warning      `json:"warnings" yaml:"warnings"`
}

// NewResolution converts res for printing.
func NewResolution(res *pagemap.Resolution) Resolution {
	return Resolution{
		Key:      res.Key,
		Method:   res.Method,
		Map:      res.Map,
		Answers:  res.Answers,
		Warnings: Warnings(res.Warnings),
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfig wraps schema violations found by Validate.
var ErrInvalidConfig = errors.New("invalid config")

const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["library", "ocr", "page_map"],
  "properties": {
    "library": {
      "type": "object",
      "properties": {
        "past_tests_db": {"type": "string", "minLength": 1},
        "problem_sets":  {"type": "string", "minLength": 1},
        "output":        {"type": "string", "minLength": 1}
      }
    },
    "ocr": {
      "type": "object",
      "properties": {
        "enabled":           {"type": "boolean"},
        "engine":            {"enum": ["tesseract", "gosseract", "openai"]},
        "tesseract_cmd":     {"type": "string"},
        "languages":         {"type": "string", "minLength": 1},
        "dpi":               {"type": "integer", "minimum": 72, "maximum": 1200},
        "page_timeout":      {"type": "integer", "minimum": 0},
        "workers":           {"type": "integer", "minimum": 0},
        "max_retries":       {"type": "integer", "minimum": 0},
        "prefer_text_layer": {"type": "boolean"},
        "min_text_ratio":    {"type": "number", "minimum": 0, "maximum": 1},
        "renderer":          {"enum": ["pdftoppm", "mupdf"]},
        "pdftoppm_cmd":      {"type": "string"},
        "openai": {
          "type": "object",
          "properties": {
            "model":    {"type": "string"},
            "api_key":  {"type": "string"},
            "base_url": {"type": "string"}
          }
        }
      }
    },
    "page_map": {
      "type": "object",
      "properties": {
        "duplicate_policy": {"enum": ["overwrite", "error"]},
        "marker_policy":    {"enum": ["first", "all"]}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("mockexam-config.json", configSchema)
	})
	return compiledSchema, schemaErr
}

// Validate checks a decoded config against the embedded JSON schema.
func Validate(cfg *Config) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	if err := sch.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, leafMessage(ve))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// leafMessage reports the deepest cause, which names the offending key.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return fmt.Sprintf("%s: %s", ve.InstanceLocation, ve.Message)
}

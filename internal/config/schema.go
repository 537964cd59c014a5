package config

import (
	"time"
)

// Config holds mockexam configuration.
// Stored at: ./config.yaml or ~/.mockexam/config.yaml
type Config struct {
	Library LibraryCfg `mapstructure:"library" yaml:"library" json:"library"`
	OCR     OCRCfg     `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	PageMap PageMapCfg `mapstructure:"page_map" yaml:"page_map" json:"page_map"`
}

// LibraryCfg locates the on-disk library of PDFs.
type LibraryCfg struct {
	PastTestsDB string `mapstructure:"past_tests_db" yaml:"past_tests_db" json:"past_tests_db"` // past_tests_db/<school>/<grade>/<year>_<term>.pdf
	ProblemSets string `mapstructure:"problem_sets" yaml:"problem_sets" json:"problem_sets"`    // problem_sets/<conformance>/{questions,answers}
	Output      string `mapstructure:"output" yaml:"output" json:"output"`                      // generated PDFs
}

// OCRCfg configures text recognition for scanned pages.
type OCRCfg struct {
	// Enabled gates every OCR path, including page map inference.
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// Engine is one of "tesseract", "gosseract", "openai".
	Engine       string `mapstructure:"engine" yaml:"engine" json:"engine"`
	TesseractCmd string `mapstructure:"tesseract_cmd" yaml:"tesseract_cmd" json:"tesseract_cmd"`
	// Languages uses tesseract syntax, e.g. "jpn+eng".
	Languages   string        `mapstructure:"languages" yaml:"languages" json:"languages"`
	DPI         int           `mapstructure:"dpi" yaml:"dpi" json:"dpi"`
	PageTimeout time.Duration `mapstructure:"page_timeout" yaml:"page_timeout" json:"page_timeout"`
	// Workers bounds concurrent page scans (0 = number of CPUs).
	Workers    int `mapstructure:"workers" yaml:"workers" json:"workers"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	// PreferTextLayer uses embedded PDF text when enough pages carry it.
	PreferTextLayer bool    `mapstructure:"prefer_text_layer" yaml:"prefer_text_layer" json:"prefer_text_layer"`
	MinTextRatio    float64 `mapstructure:"min_text_ratio" yaml:"min_text_ratio" json:"min_text_ratio"`
	// Renderer is "pdftoppm" or "mupdf".
	Renderer    string    `mapstructure:"renderer" yaml:"renderer" json:"renderer"`
	PdftoppmCmd string    `mapstructure:"pdftoppm_cmd" yaml:"pdftoppm_cmd" json:"pdftoppm_cmd"`
	OpenAI      OpenAICfg `mapstructure:"openai" yaml:"openai" json:"openai"`
}

// OpenAICfg configures the vision-model OCR engine.
type OpenAICfg struct {
	Model   string `mapstructure:"model" yaml:"model" json:"model"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key" json:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
}

// PageMapCfg holds the page map resolution policies.
type PageMapCfg struct {
	// DuplicatePolicy applies to page_map.csv: "overwrite" or "error".
	DuplicatePolicy string `mapstructure:"duplicate_policy" yaml:"duplicate_policy" json:"duplicate_policy"`
	// MarkerPolicy applies to inference: "first" or "all".
	MarkerPolicy string `mapstructure:"marker_policy" yaml:"marker_policy" json:"marker_policy"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryCfg{
			PastTestsDB: "past_tests_db",
			ProblemSets: "problem_sets",
			Output:      "generated",
		},
		OCR: OCRCfg{
			Enabled:         true,
			Engine:          "tesseract",
			TesseractCmd:    "tesseract",
			Languages:       "jpn+eng",
			DPI:             300,
			PageTimeout:     60 * time.Second,
			Workers:         0,
			MaxRetries:      2,
			PreferTextLayer: true,
			MinTextRatio:    0.4,
			Renderer:        "pdftoppm",
			PdftoppmCmd:     "pdftoppm",
			OpenAI: OpenAICfg{
				Model:  "gpt-4o-mini",
				APIKey: "${OPENAI_API_KEY}",
			},
		},
		PageMap: PageMapCfg{
			DuplicatePolicy: "overwrite",
			MarkerPolicy:    "first",
		},
	}
}

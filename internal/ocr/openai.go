package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// OpenAIName identifies the vision-model engine.
	OpenAIName = "openai"

	openAIDefaultModel = "gpt-4o-mini"

	transcribePrompt = "Transcribe all text on this scanned exam or workbook page exactly as printed. " +
		"Keep page references such as \"p.12\" or \"ページ12\" verbatim. " +
		"Return only the transcription, no commentary."
)

// OpenAIConfig configures the vision-model engine.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string // Optional (tests)
	Languages  string // hint passed to the model
	MaxRetries int
	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
	Logger     *slog.Logger
}

// OpenAI transcribes page images with a vision-capable chat model.
type OpenAI struct {
	model     string
	languages string
	client    openai.Client
	logger    *slog.Logger
}

// NewOpenAI creates a vision-model engine.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		model:     cfg.Model,
		languages: cfg.Languages,
		client:    openai.NewClient(opts...),
		logger:    logger,
	}
}

// Name returns the engine identifier.
func (o *OpenAI) Name() string {
	return OpenAIName
}

// DetectText sends the page image to the model and returns its transcription.
func (o *OpenAI) DetectText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	prompt := transcribePrompt
	if o.languages != "" {
		prompt += " Expected languages (tesseract codes): " + o.languages + "."
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURI}),
			}),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	o.logger.Debug("page transcribed", "chars", len(text),
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return text, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: OpenAI rejected the API key", ErrEngineUnavailable)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("OpenAI OCR error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("OpenAI OCR error (status %d)", apiErr.StatusCode)
	}
	return err
}

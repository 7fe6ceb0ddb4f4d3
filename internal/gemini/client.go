// Package gemini wraps the generative-model collaborators: structured field
// extraction, insight generation and vision OCR. Prompt wording lives here as
// plumbing; everything downstream consumes plain Go values.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/statementlab/bankparse/internal/model"
)

// Default models for the three call sites. Vision OCR uses the lite model:
// page transcription does not need the larger one.
const (
	DefaultExtractionModel = "gemini-2.5-flash"
	DefaultInsightModel    = "gemini-2.5-flash"
	DefaultVisionModel     = "gemini-2.5-flash-lite"
)

const (
	retryAttempts = 2
	retryDelay    = 2 * time.Second
)

// Config selects the models and credentials for a Client.
type Config struct {
	APIKey          string
	ExtractionModel string
	InsightModel    string
	VisionModel     string
}

// Client calls Gemini for extraction, insights and page OCR.
type Client struct {
	genai *genai.Client
	cfg   Config
	log   zerolog.Logger
}

// NewClient creates a Gemini client. An empty model in cfg falls back to the
// package default.
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.ExtractionModel == "" {
		cfg.ExtractionModel = DefaultExtractionModel
	}
	if cfg.InsightModel == "" {
		cfg.InsightModel = DefaultInsightModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = DefaultVisionModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{genai: gc, cfg: cfg, log: log}, nil
}

const extractionPrompt = `You are a bank statement parser.

Task:
- Parse the bank statement text below into structured data.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).

The JSON object must have this shape:
{
  "fields": {
    "bank_name": string,
    "account_holder_name": string,
    "account_number_masked": string,
    "statement_month": string ("YYYY-MM"),
    "account_type": string,
    "currency": string
  },
  "summary": {
    "opening_balance": number,
    "closing_balance": number,
    "total_credits": number (non-negative),
    "total_debits": number (non-negative),
    "average_daily_balance": number or null,
    "overdraft_count": number,
    "nsf_count": number
  },
  "transactions": [
    {
      "date": string ("YYYY-MM-DD"),
      "description": string,
      "amount": number (positive for credits, negative for debits),
      "balance": number or null (running balance after the transaction),
      "category": string
    }
  ]
}

Rules:
- If the statement has separate "paid out" / "paid in" columns, convert to a single signed "amount".
- If the running balance is missing for a row, set "balance" to null.
- Return ONLY valid raw JSON. Do NOT wrap the response in code fences.

Statement text:
`

// ExtractStatement asks the model to structure raw statement text. The call
// is retried once on failure, mirroring the flakiness of large-model JSON
// output.
func (c *Client) ExtractStatement(ctx context.Context, text string) (model.Statement, error) {
	c.log.Info().Str("model", c.cfg.ExtractionModel).Msg("Extracting statement fields")

	raw, err := Retry(ctx, retryAttempts, retryDelay, func() (string, error) {
		return c.generateText(ctx, c.cfg.ExtractionModel, []*genai.Part{{Text: extractionPrompt + text}})
	})
	if err != nil {
		return model.Statement{}, fmt.Errorf("extract statement: %w", err)
	}

	obj, err := ExtractObject(CleanModelJSON(raw))
	if err != nil {
		return model.Statement{}, fmt.Errorf("extract statement: %w", err)
	}
	st, err := model.DecodeStatement([]byte(obj))
	if err != nil {
		return model.Statement{}, fmt.Errorf("extract statement: %w", err)
	}
	return st, nil
}

const insightsPrompt = `You are a financial analyst. Given the structured bank
statement JSON below, write 3 to 5 short, concrete insights about the account
activity (salary credits, large withdrawals, overdrafts, spending pattern).
Return ONLY a JSON array of strings, no code fences, no extra text.

Statement JSON:
`

// GenerateInsights produces natural-language observations for the UI. It
// degrades instead of failing: any error becomes a single fallback insight.
func (c *Client) GenerateInsights(ctx context.Context, st model.Statement) []string {
	c.log.Info().Str("model", c.cfg.InsightModel).Msg("Generating insights")

	payload, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return []string{fmt.Sprintf("Insight generation failed: %v", err)}
	}

	raw, err := Retry(ctx, retryAttempts, retryDelay, func() (string, error) {
		return c.generateText(ctx, c.cfg.InsightModel, []*genai.Part{{Text: insightsPrompt + string(payload)}})
	})
	if err != nil {
		return []string{fmt.Sprintf("Insight generation failed: %v", err)}
	}

	arr, err := ExtractArray(CleanModelJSON(raw))
	if err != nil {
		// Model answered in prose; surface it as a single insight.
		return []string{CleanModelJSON(raw)}
	}
	var insights []string
	if err := json.Unmarshal([]byte(arr), &insights); err != nil {
		return []string{CleanModelJSON(raw)}
	}
	return insights
}

const visionPrompt = "Extract all readable text from this image page and return plain text only."

// RecognizePage runs vision OCR over one JPEG-encoded page.
func (c *Client) RecognizePage(ctx context.Context, jpegBytes []byte) (string, error) {
	text, err := c.generateText(ctx, c.cfg.VisionModel, []*genai.Part{
		{Text: visionPrompt},
		{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: jpegBytes}},
	})
	if err != nil {
		return "", fmt.Errorf("recognize page: %w", err)
	}
	return text, nil
}

// VisionModel names the model used for page OCR, for page metadata.
func (c *Client) VisionModel() string {
	return c.cfg.VisionModel
}

func (c *Client) generateText(ctx context.Context, modelName string, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := c.genai.Models.GenerateContent(ctx, modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", modelName)
	}
	return text, nil
}

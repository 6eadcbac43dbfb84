package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "polypath/internal/errors"
)

// GeminiClient generates structured JSON through the Gemini REST API.
// Responses are requested with a JSON mime type, but models still wrap
// output in markdown fences often enough that cleanup stays mandatory.
type GeminiClient struct {
	APIKey  string
	Model   string
	BaseURL string
	client  *http.Client
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateJSON sends the prompt and returns the model's output as raw JSON
// bytes, stripped of any markdown fencing.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) ([]byte, error) {
	text, err := c.generate(ctx, prompt, "application/json")
	if err != nil {
		return nil, err
	}

	text = cleanFencedContent(text, "json")
	if text == "" {
		return nil, apperrors.ExternalServiceError("gemini", fmt.Errorf("empty generation"))
	}
	return []byte(text), nil
}

// GenerateText sends the prompt and returns the model's output verbatim,
// minus markdown fencing. Used for non-JSON artifacts like LaTeX.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, prompt, "text/plain")
	if err != nil {
		return "", err
	}

	text = cleanFencedContent(text, "latex")
	if text == "" {
		return "", apperrors.ExternalServiceError("gemini", fmt.Errorf("empty generation"))
	}
	return text, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	if c.APIKey == "" {
		return "", apperrors.ConfigInvalid("GEMINI_API_KEY not configured")
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{ResponseMimeType: mimeType},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.ExternalServiceError("gemini", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperrors.ExternalServiceError("gemini",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", apperrors.ExternalServiceError("gemini", fmt.Errorf("decode response: %w", err))
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.ExternalServiceError("gemini", fmt.Errorf("empty candidates"))
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// cleanFencedContent strips markdown code fences that models emit despite
// the requested mime type. lang is the fence language tag to strip.
func cleanFencedContent(content, lang string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```"+lang)
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}

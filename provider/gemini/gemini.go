package gemini_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// client implements the provider interface using the Gemini API
type client struct {
	apiKey             string
	completionModel    string
	embeddingModel     string
	embeddingDimension int
	httpClient         *http.Client

	baseURL string
}

// NewGeminiClient creates a new Gemini client. embeddingDimension is sent as
// outputDimensionality so embedContent shortens its vectors to the store's
// collection size; 0 keeps the model's native size.
func NewGeminiClient(apiKey, completionModel, embeddingModel string, embeddingDimension int, timeout time.Duration) *client {
	return &client{
		apiKey:             apiKey,
		completionModel:    completionModel,
		embeddingModel:     embeddingModel,
		embeddingDimension: embeddingDimension,
		httpClient:         &http.Client{Timeout: timeout},
		baseURL:            geminiBaseURL,
	}
}

// Generate sends a generateContent request and returns the first candidate's text.
func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.completionModel, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// CreateEmbedding generates embeddings via the embedContent endpoint, one
// call per text (the batch endpoint caps at smaller payloads).
func (c *client) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		requestBody := map[string]interface{}{
			"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			},
		}
		if c.embeddingDimension > 0 {
			requestBody["outputDimensionality"] = c.embeddingDimension
		}
		jsonData, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		url := fmt.Sprintf("%s/%s:embedContent?key=%s", c.baseURL, c.embeddingModel, c.apiKey)
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("API returned status: %d", resp.StatusCode)
		}

		var geminiResp struct {
			Embedding struct {
				Values []float32 `json:"values"`
			} `json:"embedding"`
		}
		err = json.NewDecoder(resp.Body).Decode(&geminiResp)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		vecs = append(vecs, geminiResp.Embedding.Values)
	}
	return vecs, nil
}

package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Embedding task types understood by the Gemini embedding endpoint.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingDim is the fixed output dimensionality requested from the
// embedding model; the vector store schema depends on it.
const EmbeddingDim = 768

// RetryableError marks transient API failures (rate limits, 5xx).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("gemini api status %d (retryable): %s", e.StatusCode, e.Message)
}

// GeminiClient calls the Gemini REST API for generation and embeddings.
type GeminiClient struct {
	apiKey     string
	model      string
	embedModel string
	httpClient *http.Client
}

func NewGeminiClient(apiKey, model, embedModel string) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *GeminiClient) Close() {
	c.httpClient.CloseIdleConnections()
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type embedRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	TaskType             string        `json:"task_type,omitempty"`
	OutputDimensionality int           `json:"output_dimensionality,omitempty"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateContent sends a single-turn prompt and returns the first
// candidate's text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	url := fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, c.model)

	respBody, err := c.post(ctx, url, reqBody)
	if err != nil {
		return "", err
	}

	var apiResp generateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

// EmbedContent embeds text with the given task type. The result always has
// EmbeddingDim dimensions.
func (c *GeminiClient) EmbedContent(ctx context.Context, text, taskType string) ([]float64, error) {
	reqBody := embedRequest{
		Model:                "models/" + c.embedModel,
		Content:              geminiContent{Parts: []geminiPart{{Text: truncateForEmbedding(text)}}},
		TaskType:             taskType,
		OutputDimensionality: EmbeddingDim,
	}
	url := fmt.Sprintf("%s/%s:embedContent", geminiBaseURL, c.embedModel)

	respBody, err := c.post(ctx, url, reqBody)
	if err != nil {
		return nil, err
	}

	var apiResp embedResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("gemini error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if len(apiResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from gemini")
	}
	return apiResp.Embedding.Values, nil
}

func (c *GeminiClient) post(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini api status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

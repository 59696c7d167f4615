// Package llm talks to the vision-capable chat completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

const (
	openAIURL    = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o"

	// maxCompletionTokens caps a single slide explanation.
	maxCompletionTokens = 2000
)

// Client handles communication with the OpenAI API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
}

// Message represents a chat message
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content (text or image)
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents an image URL in the message
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// ResponseFormat pins the completion to strict JSON output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// Request represents the API request structure
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Response represents the API response structure
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// Choice represents a single completion choice
type Choice struct {
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// ChoiceMessage is the assistant message inside a choice.
type ChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewClient creates a new vision client.
func NewClient(apiKey, model string, logger *observability.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    openAIURL,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Complete sends one prompt+image request and returns the raw text of
// the model's reply. Output is pinned deterministic (temperature 0)
// and to strict JSON via response_format.
func (c *Client) Complete(ctx context.Context, prompt string, imagePNG []byte) (string, error) {
	req := c.buildRequest(prompt, imagePNG)

	body, err := json.Marshal(req)
	if err != nil {
		return "", domain.APIError("failed to marshal request", err)
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		return c.httpClient.Do(httpReq)
	})
	if err != nil {
		return "", domain.APIError("failed to send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", domain.APIError(fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(bodyBytes)), nil)
	}

	return parseCompletion(resp.Body)
}

// buildRequest constructs the multimodal API request with the image at
// high fidelity.
func (c *Client) buildRequest(prompt string, imagePNG []byte) *Request {
	imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(imagePNG)

	msg := Message{
		Role: "user",
		Content: []ContentPart{
			{
				Type: "text",
				Text: prompt,
			},
			{
				Type: "image_url",
				ImageURL: &ImageURL{
					URL:    imageURL,
					Detail: "high",
				},
			},
		},
	}

	return &Request{
		Model:          c.model,
		Messages:       []Message{msg},
		MaxTokens:      maxCompletionTokens,
		Temperature:    0,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}
}

// parseCompletion extracts the assistant text from a non-streaming
// completion response.
func parseCompletion(body io.Reader) (string, error) {
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return "", domain.APIError("failed to read response body", err)
	}

	var apiResp Response
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", domain.APIError("failed to parse API response", err)
	}

	if len(apiResp.Choices) == 0 {
		return "", domain.APIError("no choices in API response", nil)
	}

	return apiResp.Choices[0].Message.Content, nil
}

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIClient is the dedicated OpenAI chat-completions client. Images are
// sent as data-URI image parts with high detail. OpenAI models have no
// paired sibling, so there is no cross-model fallback here.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limits     Limits
	usageTracker
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature,omitempty"`
}

// openAIMessage content is either a plain string or a list of typed parts
// for multimodal messages.
type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates the dedicated OpenAI client.
func NewOpenAIClient(apiKey string, limits Limits) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1/chat/completions",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		limits:       limits,
		usageTracker: newUsageTracker(ProviderOpenAI),
	}
}

// Provider returns the provider identifier.
func (o *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

// Generate performs one generation call.
func (o *OpenAIClient) Generate(ctx context.Context, req *Request) *Result {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = "gpt-4o"
	}

	messages := []openAIMessage{
		{Role: "system", Content: req.SystemPrompt},
	}
	if req.Multimodal() {
		dataURI := fmt.Sprintf("data:%s;base64,%s", req.ImageType, base64.StdEncoding.EncodeToString(req.Image))
		messages = append(messages, openAIMessage{
			Role: "user",
			Content: []openAIContentPart{
				{Type: "text", Text: req.UserPrompt},
				{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURI, Detail: "high"}},
			},
		})
	} else {
		messages = append(messages, openAIMessage{Role: "user", Content: req.UserPrompt})
	}

	result := &Result{Meta: Meta{Model: model, Provider: string(ProviderOpenAI)}}

	resp, err := o.makeRequest(ctx, &openAIRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		o.recordError()
		result.Meta.Error = err.Error()
		result.Meta.ExecutionSeconds = time.Since(start).Seconds()
		return result
	}

	o.record(resp.Usage.TotalTokens, time.Since(start))

	if len(resp.Choices) > 0 {
		result.Content = resp.Choices[0].Message.Content
	}
	result.Meta.PromptTokens = resp.Usage.PromptTokens
	result.Meta.CompletionTokens = resp.Usage.CompletionTokens
	result.Meta.TotalTokens = resp.Usage.TotalTokens
	result.Meta.ExecutionSeconds = time.Since(start).Seconds()

	return validate(result, o.limits.Min(req.Multimodal()))
}

func (o *OpenAIClient) makeRequest(ctx context.Context, req *openAIRequest) (*openAIResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case 429:
			return nil, fmt.Errorf("RATE_LIMIT: OpenAI API rate limit exceeded")
		case 401:
			return nil, fmt.Errorf("UNAUTHORIZED: Invalid OpenAI API key")
		case 403:
			return nil, fmt.Errorf("QUOTA_EXCEEDED: OpenAI API access denied or quota exhausted")
		case 500, 502, 503, 504:
			return nil, fmt.Errorf("SERVICE_ERROR: OpenAI service temporarily unavailable (status %d)", resp.StatusCode)
		default:
			return nil, fmt.Errorf("API_ERROR: OpenAI request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if openAIResp.Error != nil {
		return nil, fmt.Errorf("SERVICE_ERROR: %s", openAIResp.Error.Message)
	}
	return &openAIResp, nil
}

// Available issues a minimal live completion and reports reachability.
func (o *OpenAIClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := o.makeRequest(ctx, &openAIRequest{
		Model: "gpt-4o-mini",
		Messages: []openAIMessage{
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: 5,
	})
	return err == nil
}

package service

import (
	"bufio"
	"bytes"
	"context"
	"edu_translator_backend/internal/config"
	"edu_translator_backend/pkg/monitoring"
	"edu_translator_backend/pkg/tracing"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions 单次调用参数；Temperature 为 0 时使用配置中的默认值
type ChatOptions struct {
	Temperature float64
	JSON        bool
}

// ChatCompleter 生成服务的阻塞调用
type ChatCompleter interface {
	Chat(ctx context.Context, messages []AIChatMessage, opts ChatOptions) (string, error)
}

// ChatStreamer 生成服务的流式调用
type ChatStreamer interface {
	ChatStream(ctx context.Context, messages []AIChatMessage, opts ChatOptions) (<-chan string, <-chan error)
}

type LLMClient interface {
	ChatCompleter
	ChatStreamer
}

type responseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"` // 流式响应
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AIService OpenAI 兼容的 /chat/completions 客户端
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	client := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &AIService{config: cfg, client: client}
}

func (s *AIService) buildRequest(ctx context.Context, messages []AIChatMessage, opts ChatOptions, stream bool) (*http.Request, error) {
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = s.config.Temperature
	}

	body := ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    messages,
		Temperature: temperature,
		Stream:      stream,
	}
	if opts.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.config.BaseURL, "/")+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	return req, nil
}

func (s *AIService) Chat(ctx context.Context, messages []AIChatMessage, opts ChatOptions) (answer string, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "llm.chat")
	span.SetAttributes(attribute.String("llm.model", s.config.Model), attribute.Bool("llm.json", opts.JSON))
	start := time.Now()
	defer func() {
		monitoring.ObserveLLM("chat", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := s.buildRequest(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return strings.TrimSpace(result.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("AI returned no choices")
}

func (s *AIService) ChatStream(ctx context.Context, messages []AIChatMessage, opts ChatOptions) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		ctx, span := tracing.Tracer.Start(ctx, "llm.chat_stream")
		defer span.End()
		start := time.Now()

		var streamErr error
		defer func() {
			monitoring.ObserveLLM("stream", start, streamErr)
			if streamErr != nil {
				span.RecordError(streamErr)
				errChan <- streamErr
			}
		}()

		req, err := s.buildRequest(ctx, messages, opts, true)
		if err != nil {
			streamErr = err
			return
		}

		resp, err := s.client.Do(req)
		if err != nil {
			streamErr = err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			streamErr = fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					streamErr = err
				}
				break
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var streamResp ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				continue
			}

			if len(streamResp.Choices) > 0 {
				content := streamResp.Choices[0].Delta.Content
				if content != "" {
					select {
					case out <- content:
					case <-ctx.Done():
						streamErr = ctx.Err()
						return
					}
				}
			}
		}
	}()

	return out, errChan
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"aiinfra/app/config"
	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/repository"
	"aiinfra/internal/infrastructure/metrics"
)

type OllamaGenerator struct {
	baseURL     string
	model       string
	temperature float64
	numPredict  int
	client      *http.Client
	logger      *zap.Logger
}

var _ repository.TextGenerator = (*OllamaGenerator)(nil)

func NewOllamaGenerator(cfg config.LLMConfig, logger *zap.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		numPredict:  cfg.NumPredict,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: proxyUnlessLoopback,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    4,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		logger: logger,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
}

func (g *OllamaGenerator) Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	metrics.IncLLMRequest(g.model)

	request := generateRequest{
		Model:  g.model,
		Prompt: systemPrompt + "\n\nUSER REQUEST:\n" + userPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: g.temperature,
			NumPredict:  g.numPredict,
		},
	}

	start := time.Now()
	response, err := g.makeRequest(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}

	g.logger.Debug("model responded",
		zap.String("model", g.model),
		zap.Int("eval_count", response.EvalCount),
		zap.Duration("took", time.Since(start)),
	)
	return strings.TrimSpace(response.Response), nil
}

func (g *OllamaGenerator) makeRequest(ctx context.Context, request generateRequest) (*generateResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		metrics.IncError("llm", "marshal_request")
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		metrics.IncError("llm", "create_request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		metrics.IncError("llm", "http_do")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.Warn("close body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.IncError("llm", fmt.Sprintf("api_error_%d", resp.StatusCode))
		return nil, fmt.Errorf("ollama api error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		metrics.IncError("llm", "decode_response")
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &response, nil
}

// proxyUnlessLoopback ignores proxy environment variables for local model
// servers.
func proxyUnlessLoopback(req *http.Request) (*url.URL, error) {
	if isLoopback(req.URL.Hostname()) {
		return nil, nil
	}
	return http.ProxyFromEnvironment(req)
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

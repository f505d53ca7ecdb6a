// Package surveygen generates synthetic survey answers with a language model.
package surveygen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"survey-responder/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Completer is the part of a langchaingo model the generator uses.
type Completer interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// LLMAnswerGenerator implements domain.AnswerGenerator
type LLMAnswerGenerator struct {
	llm         Completer
	modelName   string
	maxAttempts int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewLLMAnswerGenerator wraps an already constructed model.
func NewLLMAnswerGenerator(llm Completer, modelName string, maxAttempts int, timeout time.Duration, logger *zap.Logger) *LLMAnswerGenerator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &LLMAnswerGenerator{
		llm:         llm,
		modelName:   modelName,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		logger:      logger,
	}
}

// NewOllamaGenerator creates a generator backed by a local Ollama server.
// The model must already be pulled on that server.
func NewOllamaGenerator(serverURL, modelName string, maxAttempts int, timeout time.Duration, logger *zap.Logger) (*LLMAnswerGenerator, error) {
	if serverURL == "" {
		return nil, domain.NewInvalidInputError("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, domain.NewInvalidInputError("model name cannot be empty")
	}

	llm, err := ollama.New(
		ollama.WithModel(modelName),
		ollama.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, domain.NewInternalError("failed to create LangchainGo Ollama client", err)
	}
	logger.Info("Initialized Ollama answer generator", zap.String("server_url", serverURL), zap.String("model", modelName))
	return NewLLMAnswerGenerator(llm, modelName, maxAttempts, timeout, logger), nil
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible endpoint
// such as a local vLLM or LM Studio server.
func NewOpenAIGenerator(baseURL, apiKey, modelName string, maxAttempts int, timeout time.Duration, logger *zap.Logger) (*LLMAnswerGenerator, error) {
	if modelName == "" {
		return nil, domain.NewInvalidInputError("model name cannot be empty")
	}
	if apiKey == "" {
		// Local OpenAI-compatible servers ignore the token but the client requires one.
		apiKey = "unused"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, domain.NewInternalError("failed to create LangchainGo OpenAI client", err)
	}
	logger.Info("Initialized OpenAI-compatible answer generator", zap.String("base_url", baseURL), zap.String("model", modelName))
	return NewLLMAnswerGenerator(llm, modelName, maxAttempts, timeout, logger), nil
}

// GenerateAnswers implements domain.AnswerGenerator
func (g *LLMAnswerGenerator) GenerateAnswers(ctx context.Context, req domain.AnswerRequest) ([]string, error) {
	if len(req.Questions) == 0 {
		return nil, domain.NewInvalidInputError("no questions to answer")
	}
	if len(req.Options) == 0 {
		return nil, domain.NewInvalidInputError("no response options")
	}

	prompt := buildPrompt(req)
	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		raw, err := g.callLLM(ctx, prompt, req.Temperature)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("Raw LLM response received", zap.Int("attempt", attempt), zap.String("raw_response", raw))

		answers, err := parseAnswers(raw, len(req.Questions), req.Options)
		if err == nil {
			return answers, nil
		}
		lastErr = err
		g.logger.Warn("Discarding unusable LLM response",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.maxAttempts),
			zap.Error(err))
	}
	return nil, domain.NewLLMServiceError(fmt.Errorf("no usable response after %d attempts: %w", g.maxAttempts, lastErr))
}

func (g *LLMAnswerGenerator) callLLM(ctx context.Context, prompt string, temperature float64) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	response, err := g.llm.Call(ctx, prompt, llms.WithTemperature(temperature))
	if err == nil {
		return response, nil
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "", err
	case errors.Is(err, context.DeadlineExceeded):
		g.logger.Error("LLM request timed out", zap.Duration("timeout", g.timeout), zap.Error(err))
		return "", domain.NewLLMServiceError(fmt.Errorf("LLM request timed out: %w", err))
	case isConnectionError(err):
		g.logger.Error("Could not reach model server", zap.String("model", g.modelName), zap.Error(err))
		return "", domain.NewConnectionError(fmt.Sprintf("could not reach model server for %s", g.modelName), err)
	default:
		g.logger.Error("Failed to get response from LLM", zap.String("model", g.modelName), zap.Error(err))
		return "", domain.NewLLMServiceError(fmt.Errorf("LLM call failed: %w", err))
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && !urlErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host")
}

// Static assertion to ensure LLMAnswerGenerator implements AnswerGenerator
var _ domain.AnswerGenerator = (*LLMAnswerGenerator)(nil)

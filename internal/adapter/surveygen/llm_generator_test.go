package surveygen

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"survey-responder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// MockCompleter is a mock type for the Completer interface
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt, options)
	return args.String(0), args.Error(1)
}

func testRequest() domain.AnswerRequest {
	return domain.AnswerRequest{
		Persona:     &domain.Persona{Name: "Dana", Attributes: map[string]any{"name": "Dana", "occupation": "nurse"}},
		Questions:   []string{"I sleep well.", "I exercise."},
		Options:     domain.DefaultResponseOptions,
		Temperature: 0.7,
	}
}

func TestGenerateAnswers_Success(t *testing.T) {
	m := new(MockCompleter)
	gen := NewLLMAnswerGenerator(m, "llama3.1", 3, time.Minute, zap.NewNop())

	m.On("Call", mock.Anything, buildPrompt(testRequest()), mock.Anything).Return(`<think>she works nights</think> {"1": "rarely", "2": "Often"}`, nil).Once()

	answers, err := gen.GenerateAnswers(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"Rarely", "Often"}, answers)
	m.AssertExpectations(t)
}

func TestGenerateAnswers_PassesTemperature(t *testing.T) {
	m := new(MockCompleter)
	gen := NewLLMAnswerGenerator(m, "llama3.1", 1, time.Minute, zap.NewNop())

	m.On("Call", mock.Anything, mock.Anything, mock.MatchedBy(func(opts []llms.CallOption) bool {
		var co llms.CallOptions
		for _, o := range opts {
			o(&co)
		}
		return co.Temperature == 0.7
	})).Return(`{"1": "Never", "2": "Always"}`, nil).Once()

	_, err := gen.GenerateAnswers(context.Background(), testRequest())
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestGenerateAnswers_RetriesUnusableResponses(t *testing.T) {
	m := new(MockCompleter)
	gen := NewLLMAnswerGenerator(m, "llama3.1", 3, time.Minute, zap.NewNop())

	m.On("Call", mock.Anything, mock.Anything, mock.Anything).Return("I'd say sometimes?", nil).Once()
	m.On("Call", mock.Anything, mock.Anything, mock.Anything).Return(`{"1": "Maybe", "2": "Often"}`, nil).Once()
	m.On("Call", mock.Anything, mock.Anything, mock.Anything).Return(`{"1": "Sometimes", "2": "Often"}`, nil).Once()

	answers, err := gen.GenerateAnswers(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sometimes", "Often"}, answers)
	m.AssertNumberOfCalls(t, "Call", 3)
}

func TestGenerateAnswers_ExhaustsAttempts(t *testing.T) {
	m := new(MockCompleter)
	gen := NewLLMAnswerGenerator(m, "llama3.1", 2, time.Minute, zap.NewNop())

	m.On("Call", mock.Anything, mock.Anything, mock.Anything).Return(`{"1": "Never"}`, nil).Times(2)

	_, err := gen.GenerateAnswers(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, domain.ErrLLMServiceError, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "missing answer for question 2")
	m.AssertExpectations(t)
}

func TestGenerateAnswers_ConnectionError(t *testing.T) {
	m := new(MockCompleter)
	gen := NewLLMAnswerGenerator(m, "llama3.1", 3, time.Minute, zap.NewNop())

	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}
	m.On("Call", mock.Anything, mock.Anything, mock.Anything).Return("", dialErr).Once()

	_, err := gen.GenerateAnswers(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, domain.ErrConnection, domain.CodeOf(err))
	assert.ErrorIs(t, err, dialErr)
	m.AssertNumberOfCalls(t, "Call", 1)
}

func TestGenerateAnswers_ServiceError(t *testing.T) {
	m := new(MockCompleter)
	gen := NewLLMAnswerGenerator(m, "llama3.1", 3, time.Minute, zap.NewNop())

	m.On("Call", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New(`model "llama3.1" not found, try pulling it first`)).Once()

	_, err := gen.GenerateAnswers(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, domain.ErrLLMServiceError, domain.CodeOf(err))
}

func TestGenerateAnswers_EmptyRequest(t *testing.T) {
	gen := NewLLMAnswerGenerator(new(MockCompleter), "llama3.1", 1, time.Minute, zap.NewNop())

	req := testRequest()
	req.Questions = nil
	_, err := gen.GenerateAnswers(context.Background(), req)
	assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(err))
}

func TestNewOllamaGenerator_Validation(t *testing.T) {
	_, err := NewOllamaGenerator("", "llama3.1", 1, time.Minute, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server URL cannot be empty")

	_, err = NewOllamaGenerator("http://localhost:11434", "", 1, time.Minute, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model name cannot be empty")

	gen, err := NewOllamaGenerator("http://localhost:11434", "llama3.1", 1, time.Minute, zap.NewNop())
	assert.NoError(t, err)
	assert.NotNil(t, gen)
}

package service

import (
	"context"
	"time"

	"survey-responder/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockAnswerGenerator ---
type MockAnswerGenerator struct {
	mock.Mock
}

func (m *MockAnswerGenerator) GenerateAnswers(ctx context.Context, req domain.AnswerRequest) ([]string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- MockResultWriter ---
type MockResultWriter struct {
	mock.Mock
}

func (m *MockResultWriter) Write(path string, result *domain.SurveyResult) error {
	args := m.Called(path, result)
	return args.Error(0)
}

// --- MockResultArchive ---
type MockResultArchive struct {
	mock.Mock
}

func (m *MockResultArchive) SaveResult(ctx context.Context, result *domain.SurveyResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

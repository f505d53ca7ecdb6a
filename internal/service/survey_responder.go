package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"survey-responder/internal/cache"
	"survey-responder/internal/domain"
	"survey-responder/internal/persona"
	"survey-responder/internal/questions"
	"survey-responder/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ResponderOptions holds the tuning knobs that do not come from the command line.
type ResponderOptions struct {
	Concurrency int
	CacheTTL    time.Duration
}

// SurveyResponder generates synthetic respondents for a questionnaire.
type SurveyResponder struct {
	params    domain.RunParams
	generator domain.AnswerGenerator
	writer    domain.ResultWriter
	cache     domain.Cache         // optional
	archive   domain.ResultArchive // optional
	opts      ResponderOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewSurveyResponder creates a new SurveyResponder. cache and archive may be nil.
func NewSurveyResponder(
	params domain.RunParams,
	generator domain.AnswerGenerator,
	writer domain.ResultWriter,
	cache domain.Cache,
	archive domain.ResultArchive,
	opts ResponderOptions,
	logger *zap.Logger,
) *SurveyResponder {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &SurveyResponder{
		params:    params,
		generator: generator,
		writer:    writer,
		cache:     cache,
		archive:   archive,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Run generates NumResponses respondents. Respondents are returned in order
// regardless of concurrency.
func (s *SurveyResponder) Run(ctx context.Context) (*domain.SurveyResult, error) {
	qs, err := questions.Load(s.params.QuestionsPath)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("Questions file has no questions: %s", s.params.QuestionsPath))
	}
	p, err := persona.Load(s.params.PersonaPath)
	if err != nil {
		return nil, err
	}

	req := domain.AnswerRequest{
		Persona:     p,
		Questions:   qs,
		Options:     s.params.Options(),
		Temperature: s.params.Temperature,
	}
	result := &domain.SurveyResult{
		RunID:       util.NewULID(),
		Model:       s.params.ModelName,
		Temperature: s.params.Temperature,
		Questions:   qs,
		Options:     req.Options,
		Respondents: make([]domain.Respondent, s.params.NumResponses),
		CreatedAt:   s.now().UTC(),
	}

	s.logger.Info("Starting survey run",
		zap.String("run_id", result.RunID),
		zap.String("model", s.params.ModelName),
		zap.String("persona", p.Name),
		zap.Int("questions", len(qs)),
		zap.Int("num_responses", s.params.NumResponses),
		zap.Float64("temperature", s.params.Temperature),
		zap.Int("concurrency", s.opts.Concurrency))

	cacheKey := ""
	if s.cacheable() {
		cacheKey = s.answersCacheKey(p, req)
	}

	generate := func(ctx context.Context, number int) error {
		answers, err := s.answersFor(ctx, req, cacheKey)
		if err != nil {
			return fmt.Errorf("respondent %d: %w", number, err)
		}
		result.Respondents[number-1] = domain.Respondent{Number: number, Answers: answers}
		s.logger.Info("Generated respondent",
			zap.String("run_id", result.RunID),
			zap.Int("respondent", number),
			zap.Int("of", s.params.NumResponses))
		return nil
	}

	// A cacheable run fills the cache with respondent 1 before fanning out.
	first := 0
	if cacheKey != "" && len(result.Respondents) > 0 {
		if err := generate(ctx, 1); err != nil {
			s.logger.Error("Survey run failed", zap.String("run_id", result.RunID), zap.Error(err))
			return nil, err
		}
		first = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i := first; i < len(result.Respondents); i++ {
		number := i + 1
		g.Go(func() error {
			return generate(gctx, number)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Survey run failed", zap.String("run_id", result.RunID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Survey run completed", zap.String("run_id", result.RunID))
	return result, nil
}

// RunAndWrite runs the survey, writes the CSV to path, and archives the
// result when an archive is configured.
func (s *SurveyResponder) RunAndWrite(ctx context.Context, path string) (*domain.SurveyResult, error) {
	result, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.writer.Write(path, result); err != nil {
		return nil, err
	}
	s.logger.Info("Wrote survey results", zap.String("run_id", result.RunID), zap.String("path", path))

	if s.archive != nil {
		if err := s.archive.SaveResult(ctx, result); err != nil {
			return nil, domain.NewInternalError(fmt.Sprintf("results written to %s but archiving run %s failed", path, result.RunID), err)
		}
		s.logger.Info("Archived survey run", zap.String("run_id", result.RunID))
	}
	return result, nil
}

// cacheable reports whether answers are deterministic enough to reuse.
// Only greedy decoding (temperature 0) qualifies.
func (s *SurveyResponder) cacheable() bool {
	return s.cache != nil && s.params.Temperature == 0
}

func (s *SurveyResponder) answersFor(ctx context.Context, req domain.AnswerRequest, cacheKey string) ([]string, error) {
	if cacheKey != "" {
		if answers, ok := s.cachedAnswers(ctx, cacheKey, len(req.Questions)); ok {
			return answers, nil
		}
	}

	answers, err := s.generator.GenerateAnswers(ctx, req)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" {
		s.storeAnswers(ctx, cacheKey, answers)
	}
	return answers, nil
}

func (s *SurveyResponder) cachedAnswers(ctx context.Context, key string, numQuestions int) ([]string, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("Answer cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var answers []string
	if err := json.Unmarshal([]byte(raw), &answers); err != nil || len(answers) != numQuestions {
		s.logger.Warn("Evicting malformed cached answers", zap.String("key", key), zap.Error(err))
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Answer cache delete failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	s.logger.Debug("Answer cache hit", zap.String("key", key))
	return answers, true
}

func (s *SurveyResponder) storeAnswers(ctx context.Context, key string, answers []string) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.opts.CacheTTL); err != nil {
		s.logger.Warn("Answer cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *SurveyResponder) answersCacheKey(p *domain.Persona, req domain.AnswerRequest) string {
	personaJSON, _ := json.Marshal(p.Attributes) // map keys marshal sorted
	questionsJSON, _ := json.Marshal(req.Questions)
	optionsJSON, _ := json.Marshal(req.Options)
	return cache.GenerateCacheKey("answers", cache.Fingerprint(
		s.params.ModelName,
		strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		string(personaJSON),
		string(questionsJSON),
		string(optionsJSON),
	))
}

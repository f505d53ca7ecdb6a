package cli

import (
	"context"

	"survey-responder/internal/adapter"
	"survey-responder/internal/adapter/surveygen"
	"survey-responder/internal/cache"
	"survey-responder/internal/config"
	"survey-responder/internal/database"
	"survey-responder/internal/domain"
	"survey-responder/internal/logger"
	"survey-responder/internal/output"
	"survey-responder/internal/repository"
	"survey-responder/internal/service"

	"go.uber.org/zap"
)

// buildRunner wires a SurveyResponder from configuration.
func buildRunner(ctx context.Context, cfg *config.Config, params domain.RunParams) (Runner, func(), error) {
	log := logger.Get()
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	generator, err := newGenerator(cfg, params.ModelName, log)
	if err != nil {
		return nil, cleanup, err
	}

	var answerCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis cache unavailable, running without cache", zap.Error(err))
		} else {
			closers = append(closers, func() { redisClient.Close() })
			answerCache = adapter.NewRedisCacheAdapter(redisClient)
			log.Info("Redis answer cache enabled", zap.String("address", cfg.Redis.Address))
		}
	}

	var archive domain.ResultArchive
	if cfg.Archive.DSN != "" {
		db, err := database.NewSQLXOracleDB(ctx, cfg.Archive.DSN)
		if err != nil {
			cleanup()
			return nil, func() {}, domain.NewConnectionError("could not connect to results archive", err)
		}
		closers = append(closers, func() { db.Close() })
		if err := database.RunMigrations(ctx, db, log); err != nil {
			cleanup()
			return nil, func() {}, domain.NewInternalError("failed to prepare results archive", err)
		}
		archive = repository.NewSurveyArchiveAdapter(db, repository.NewTransactionManagerAdapter(db))
		log.Info("Results archive enabled")
	}

	responder := service.NewSurveyResponder(
		params,
		generator,
		output.NewCSVWriter(),
		answerCache,
		archive,
		service.ResponderOptions{
			Concurrency: cfg.Generation.Concurrency,
			CacheTTL:    cfg.Cache.TTL,
		},
		log,
	)
	return responder, cleanup, nil
}

func newGenerator(cfg *config.Config, model string, log *zap.Logger) (domain.AnswerGenerator, error) {
	var (
		gen *surveygen.LLMAnswerGenerator
		err error
	)
	switch cfg.LLM.Provider {
	case "openai":
		gen, err = surveygen.NewOpenAIGenerator(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, model, cfg.Generation.MaxAttempts, cfg.LLM.Timeout, log)
	default:
		gen, err = surveygen.NewOllamaGenerator(cfg.Ollama.ServerURL, model, cfg.Generation.MaxAttempts, cfg.LLM.Timeout, log)
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

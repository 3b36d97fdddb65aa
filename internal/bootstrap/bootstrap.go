package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/core/usecase"
	"github.com/kirillkom/fincadocs/internal/infrastructure/queue/nats"
	"github.com/kirillkom/fincadocs/internal/infrastructure/repository/memory"
	"github.com/kirillkom/fincadocs/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
	"github.com/kirillkom/fincadocs/internal/infrastructure/storage/localfs"
)

type Options struct {
	Logger   *slog.Logger
	Observer usecase.PipelineObserver
	// InMemory keeps state in process and skips Postgres and NATS; docctl runs this way.
	InMemory bool
}

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Pipeline *Pipeline

	Queue      ports.MessageQueue
	Repo       ports.DocumentRepository
	IngestUC   *usecase.IngestDocumentUseCase
	ProcessUC  *usecase.ProcessDocumentUseCase
	ValidateUC *usecase.ValidateFieldsUseCase

	// Memory is set in in-memory mode.
	Memory *memory.Store

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pipeline, err := NewPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		repo    ports.DocumentRepository
		fields  ports.ExtractedFieldsRepository
		chunks  ports.ChunkRepository
		storage ports.ObjectStorage
		queue   ports.MessageQueue
		store   *memory.Store
		closeFn = func() {}
	)

	if opts.InMemory {
		store = memory.New()
		repo, fields, chunks, storage = store, store, store, store
	} else {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		docRepo := postgres.NewDocumentRepository(db)
		if err := docRepo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		repo = docRepo
		fields = postgres.NewFieldsRepository(db)
		chunks = postgres.NewChunkRepository(db)

		fs, err := localfs.New(cfg.StoragePath)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		storage = fs

		natsQueue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			MaxInFlight: cfg.WorkerConcurrency,
			Logger:      logger,
			ResilienceExecutor: resilience.NewExecutor(resilience.PublishPolicy(
				cfg.ResilienceRetryAttempts,
				cfg.ResilienceRetryBackoff,
				cfg.ResilienceBreakerEnabled,
				logger,
			)),
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		queue = natsQueue
		closeFn = func() {
			natsQueue.Close()
			_ = db.Close()
		}
	}

	processUC := usecase.NewProcessDocumentUseCase(usecase.ProcessDependencies{
		Repo:       repo,
		Fields:     fields,
		Chunks:     chunks,
		Storage:    storage,
		Chunker:    pipeline.Chunker,
		Extractor:  pipeline.Extractor,
		Classifier: pipeline.Classifier,
		Metadata:   pipeline.Metadata,
		Validator:  pipeline.Registry,
		Observer:   opts.Observer,
		Logger:     logger,
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		Pipeline: pipeline,

		Queue:      queue,
		Repo:       repo,
		IngestUC:   usecase.NewIngestDocumentUseCase(repo, storage, queue, domain.ProcessingLevel(cfg.DefaultLevel)),
		ProcessUC:  processUC,
		ValidateUC: usecase.NewValidateFieldsUseCase(fields, pipeline.Registry),
		Memory:     store,

		closeFn: closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

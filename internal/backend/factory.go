package backend

import (
	"context"
	"fmt"

	"stock/internal/log"
	"stock/internal/stock/api"
	"stock/internal/stock/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case APIBackend:
		return f.createAPIBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createAPIBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var opts []api.Option
	if config.APITimeout > 0 {
		opts = append(opts, api.WithTimeout(config.APITimeout))
	}
	client, err := api.New(config.APIBaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized API backend",
		"base_url", config.APIBaseURL,
		"timeout", config.APITimeout.String())

	return &BackendResult{Backend: client, Cleanup: client.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory backend seed: %w", err)
	}

	items, _ := store.ListItems(ctx, "")
	f.logger.InfoContext(ctx, "Initialized memory backend",
		"seed_file", config.SeedFile,
		log.FieldCount, len(items))

	return &BackendResult{Backend: store}, nil
}

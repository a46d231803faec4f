package backend

import (
	"context"
	"time"

	"stock/internal/stock"
)

// Backend is everything the UI needs from the persistence layer
type Backend interface {
	stock.ItemLister
	stock.ItemCreator
	stock.QuantityUpdater
	stock.ItemDeleter
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// API specific
	APIBaseURL string
	APITimeout time.Duration

	// Memory specific
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	APIBackend    BackendType = "api"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case APIBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

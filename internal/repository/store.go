// Package repository persists minted study export artifacts.
package repository

import (
	"context"
	"errors"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// ErrExportNotFound is returned when no artifact carries the requested name.
var ErrExportNotFound = errors.New("export not found")

// Store defines the interface for export persistence.
type Store interface {
	SaveExport(ctx context.Context, artifact *domain.ExportArtifact) error
	GetExportByFilename(ctx context.Context, filename string) (*domain.ExportArtifact, error)
	ListExports(ctx context.Context, sessionID string) ([]domain.ExportArtifact, error)

	// Lifecycle
	Close() error
}

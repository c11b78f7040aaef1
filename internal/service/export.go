package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// Export mints a results document from the results recorded so far and
// stores it. Exporting is allowed in any session state.
func (s *Service) Export(ctx context.Context) (*domain.ExportArtifact, error) {
	seq, _, err := s.session()
	if err != nil {
		return nil, err
	}

	artifact, err := s.exporter.Export(seq.Participant(), seq.MethodOrder(), seq.Results())
	if err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}
	artifact.SessionID = seq.ID()

	if err := s.store.SaveExport(ctx, artifact); err != nil {
		return nil, err
	}
	s.logger.Info("results exported",
		zap.String("export_id", artifact.ExportID),
		zap.String("filename", artifact.Filename),
		zap.Int("trials", len(seq.Results())))
	return artifact, nil
}

// GetExport returns a previously minted artifact.
func (s *Service) GetExport(ctx context.Context, filename string) (*domain.ExportArtifact, error) {
	return s.store.GetExportByFilename(ctx, filename)
}

// ListExports lists the artifacts minted in the current session.
func (s *Service) ListExports(ctx context.Context) (*domain.ListExportsResponse, error) {
	seq, _, err := s.session()
	if err != nil {
		return nil, err
	}
	exports, err := s.store.ListExports(ctx, seq.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	if exports == nil {
		exports = []domain.ExportArtifact{}
	}
	return &domain.ListExportsResponse{Exports: exports}, nil
}

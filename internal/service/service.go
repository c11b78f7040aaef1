package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/adapter/ingress"
	"github.com/xiaot623/gogo/foodshare/internal/catalog"
	"github.com/xiaot623/gogo/foodshare/internal/config"
	"github.com/xiaot623/gogo/foodshare/internal/discovery"
	"github.com/xiaot623/gogo/foodshare/internal/domain"
	"github.com/xiaot623/gogo/foodshare/internal/repository"
	"github.com/xiaot623/gogo/foodshare/internal/study"
	"github.com/xiaot623/gogo/foodshare/policy"
)

const eventQueueSize = 64

type Service struct {
	loader        *catalog.Loader
	pipeline      *discovery.Pipeline
	studyConfig   *study.Config
	exporter      *study.Exporter
	store         repository.Store
	ingressClient *ingress.Client
	config        *config.Config
	policyEngine  *policy.Engine
	logger        *zap.Logger
	clock         study.Clock
	events        chan domain.Event

	mu         sync.Mutex
	sequencer  *study.Sequencer
	sessionErr error

	subMu       sync.Mutex
	subscribers map[chan domain.Event]struct{}
}

func New(loader *catalog.Loader, studyConfig *study.Config, store repository.Store, ingressClient *ingress.Client, cfg *config.Config, policyEngine *policy.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := study.SystemClock()
	return &Service{
		loader:        loader,
		pipeline:      discovery.NewPipeline(discovery.NewMatcher(cfg.FuzzyThreshold)),
		studyConfig:   studyConfig,
		exporter:      study.NewExporter(clock),
		store:         store,
		ingressClient: ingressClient,
		config:        cfg,
		policyEngine:  policyEngine,
		logger:        logger,
		clock:         clock,
		events:        make(chan domain.Event, eventQueueSize),
		subscribers:   make(map[chan domain.Event]struct{}),
	}
}

// Run loads the catalog, opens the study session and forwards session
// events to ingress until ctx is done. It returns an error only when the
// study configuration does not fit the loaded catalog.
func (s *Service) Run(ctx context.Context) error {
	s.loader.Start(ctx)
	select {
	case <-ctx.Done():
		return nil
	case <-s.loader.Done():
	}

	if _, _, err := s.session(); err != nil {
		if errors.Is(err, study.ErrConfiguration) {
			return err
		}
		s.logger.Warn("study session unavailable", zap.Error(err))
	}

	s.pumpEvents(ctx)
	return nil
}

// Prepare loads the catalog synchronously and opens the study session.
// It fails on a catalog load error as well as a configuration error.
func (s *Service) Prepare(ctx context.Context) error {
	if _, err := s.loader.Load(ctx); err != nil {
		return err
	}
	_, _, err := s.session()
	return err
}

// Close stops the session's pending timers.
func (s *Service) Close() {
	s.mu.Lock()
	seq := s.sequencer
	s.mu.Unlock()
	if seq != nil {
		seq.Close()
	}
}

// session returns the study session, creating it on first use once the
// catalog is ready. A configuration error is sticky.
func (s *Service) session() (*study.Sequencer, *catalog.Catalog, error) {
	c, err := s.loader.Catalog()
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sequencer != nil {
		return s.sequencer, c, nil
	}
	if s.sessionErr != nil {
		return nil, c, s.sessionErr
	}

	opts := study.Options{
		Clock:             s.clock,
		FlagDelay:         s.config.MissFlagDelay,
		DefaultDistanceKm: s.config.DefaultDistanceKm,
		MaxDistanceKm:     s.config.MaxDistanceKm,
		Notify:            s.notify,
		Logger:            s.logger.Named("study"),
	}
	if s.policyEngine != nil {
		opts.Gate = s.policyEngine
	}
	seq, err := study.NewSequencer(s.studyConfig, c, opts)
	if err != nil {
		s.sessionErr = err
		s.logger.Error("study configuration rejected", zap.Error(err))
		return nil, c, err
	}
	s.sequencer = seq
	s.logger.Info("study session opened",
		zap.String("session_id", seq.ID()),
		zap.String("participant", seq.Participant()),
		zap.Int("trials", seq.Snapshot().TotalTrials))
	return seq, c, nil
}

package service

import (
	"context"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
	"github.com/xiaot623/gogo/foodshare/internal/study"
)

// Session returns the session snapshot.
func (s *Service) Session(ctx context.Context) (*domain.SessionSnapshot, error) {
	seq, _, err := s.session()
	if err != nil {
		return nil, err
	}
	snap := seq.Snapshot()
	return &snap, nil
}

// StartTrial starts the pending trial. Outside AwaitingStart it changes
// nothing.
func (s *Service) StartTrial(ctx context.Context) (*domain.TransitionResponse, error) {
	seq, _, err := s.session()
	if err != nil {
		return nil, err
	}
	changed := seq.Start()
	return &domain.TransitionResponse{Changed: changed, Session: seq.Snapshot()}, nil
}

// ContinueAfterBreak leaves the break between methods.
func (s *Service) ContinueAfterBreak(ctx context.Context) (*domain.TransitionResponse, error) {
	seq, _, err := s.session()
	if err != nil {
		return nil, err
	}
	changed := seq.Continue()
	return &domain.TransitionResponse{Changed: changed, Session: seq.Snapshot()}, nil
}

// UpdateParams applies the fields of req that the current trial allows.
func (s *Service) UpdateParams(ctx context.Context, req domain.UpdateParamsRequest) (*domain.UpdateParamsResponse, error) {
	seq, _, err := s.session()
	if err != nil {
		return nil, err
	}

	upd := study.ParamsUpdate{
		Query:         req.Query,
		MaxDistanceKm: req.MaxDistanceKm,
	}
	if req.Tags != nil {
		upd.Tags = *req.Tags
		upd.SetTags = true
	}
	params, changed := seq.UpdateParams(ctx, upd)
	_, method := seq.Params()
	return &domain.UpdateParamsResponse{Params: params, Method: method, Changed: changed}, nil
}

// Select records a listing selection against the active trial.
func (s *Service) Select(ctx context.Context, listingID int) (*domain.SelectResponse, error) {
	seq, _, err := s.session()
	if err != nil {
		return nil, err
	}

	out := seq.Select(ctx, listingID)
	return &domain.SelectResponse{
		Ignored: out.Ignored,
		Hit:     out.Hit,
		Result:  out.Result,
		Session: seq.Snapshot(),
	}, nil
}

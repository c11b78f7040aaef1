// Package rpc exposes the study session over JSON-RPC for the UI gateway.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
	"github.com/xiaot623/gogo/foodshare/internal/service"
)

// Server exposes internal RPC endpoints for the ingress gateway.
type Server struct {
	mu        sync.Mutex
	listener  net.Listener
	rpcServer *rpc.Server
	logger    *zap.Logger
	done      chan struct{}
}

// NewServer creates a new RPC server bound to the service.
func NewServer(svc *service.Service, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc}
	if err := rpcServer.RegisterName("Study", handler); err != nil {
		return nil, fmt.Errorf("register rpc handler: %w", err)
	}

	return &Server{
		rpcServer: rpcServer,
		logger:    logger,
		done:      make(chan struct{}),
	}, nil
}

// Start begins accepting RPC connections on the given address.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts RPC connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			s.logger.Warn("rpc accept error", zap.Error(err))
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Shutdown stops accepting new RPC connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	if err := ln.Close(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler implements study RPC methods. net/rpc requires the
// (args, reply) error shape, so each method takes a request even when it
// carries nothing.
type Handler struct {
	service *service.Service
}

// Empty is the argument of methods without input.
type Empty struct{}

// Snapshot returns the session snapshot.
func (h *Handler) Snapshot(_ *Empty, resp *domain.SessionSnapshot) error {
	snap, err := h.service.Session(context.Background())
	if err != nil {
		return err
	}
	*resp = *snap
	return nil
}

// Start starts the pending trial.
func (h *Handler) Start(_ *Empty, resp *domain.TransitionResponse) error {
	result, err := h.service.StartTrial(context.Background())
	if err != nil {
		return err
	}
	*resp = *result
	return nil
}

// Continue leaves the break between methods.
func (h *Handler) Continue(_ *Empty, resp *domain.TransitionResponse) error {
	result, err := h.service.ContinueAfterBreak(context.Background())
	if err != nil {
		return err
	}
	*resp = *result
	return nil
}

// UpdateParams changes the live filter parameters.
func (h *Handler) UpdateParams(req *domain.UpdateParamsRequest, resp *domain.UpdateParamsResponse) error {
	if req == nil {
		return errors.New("params request is required")
	}
	result, err := h.service.UpdateParams(context.Background(), *req)
	if err != nil {
		return err
	}
	*resp = *result
	return nil
}

// Select records a listing selection.
func (h *Handler) Select(req *domain.SelectRequest, resp *domain.SelectResponse) error {
	if req == nil || req.ListingID == nil {
		return errors.New("listing_id is required")
	}
	result, err := h.service.Select(context.Background(), *req.ListingID)
	if err != nil {
		return err
	}
	*resp = *result
	return nil
}

// Listings renders the listings for the current parameters.
func (h *Handler) Listings(_ *Empty, resp *domain.ListingsResponse) error {
	result, err := h.service.Listings(context.Background())
	if err != nil {
		return err
	}
	*resp = *result
	return nil
}

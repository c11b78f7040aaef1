// Package ingress pushes session events to the UI gateway over JSON-RPC.
package ingress

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc/jsonrpc"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// Client delivers events to the ingress "Ingress.PushEvent" endpoint.
// A client with no address drops every event.
type Client struct {
	addr        string
	dialTimeout time.Duration
	callTimeout time.Duration
	logger      *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		addr:        resolveRPCAddr(baseURL),
		dialTimeout: 2 * time.Second,
		callTimeout: 2 * time.Second,
		logger:      logger,
	}
}

// SendRequest represents the request body for event delivery.
type SendRequest struct {
	SessionID string                 `json:"session_id"`
	Event     map[string]interface{} `json:"event"`
}

// SendResponse represents the response for event delivery.
type SendResponse struct {
	OK        bool `json:"ok"`
	Delivered bool `json:"delivered"`
}

// Enabled reports whether the client has somewhere to deliver to.
func (c *Client) Enabled() bool {
	return c.addr != ""
}

// PushEvent delivers one session event.
func (c *Client) PushEvent(ctx context.Context, event domain.Event) error {
	if c.addr == "" {
		return nil
	}

	req := &SendRequest{
		SessionID: event.SessionID,
		Event:     eventPayload(event),
	}

	var resp SendResponse
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := c.call(ctx, "Ingress.PushEvent", req, &resp); err != nil {
		return fmt.Errorf("failed to push event to ingress: %w", err)
	}
	if !resp.OK {
		c.logger.Warn("ingress rpc returned ok=false",
			zap.String("type", string(event.Type)),
			zap.Bool("delivered", resp.Delivered))
		return errors.New("ingress rpc returned ok=false")
	}
	c.logger.Debug("event pushed",
		zap.String("session_id", event.SessionID),
		zap.String("type", string(event.Type)),
		zap.Bool("delivered", resp.Delivered))
	return nil
}

func eventPayload(event domain.Event) map[string]interface{} {
	payload := map[string]interface{}{
		"type":        string(event.Type),
		"ts":          event.Ts,
		"session_id":  event.SessionID,
		"trial_index": event.TrialIndex,
	}
	if event.TrialID != 0 {
		payload["trial_id"] = event.TrialID
	}
	if event.ListingID != nil {
		payload["listing_id"] = *event.ListingID
	}
	return payload
}

func (c *Client) call(ctx context.Context, method string, args, reply interface{}) error {
	conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if c.callTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.callTimeout))
	}

	client := jsonrpc.NewClient(conn)
	defer client.Close()
	call := client.Go(method, args, reply, nil)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-call.Done:
		return call.Error
	}
}

func resolveRPCAddr(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err == nil && parsed.Host != "" {
			return parsed.Host
		}
	}
	return raw
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

const subscriberBuffer = 16

// notify is the sequencer's event hook. It must not block: it runs on the
// request goroutine or a flag timer.
func (s *Service) notify(ev domain.Event) {
	fields := []zap.Field{
		zap.String("type", string(ev.Type)),
		zap.Int("trial_index", ev.TrialIndex),
	}
	if ev.ListingID != nil {
		fields = append(fields, zap.Int("listing_id", *ev.ListingID))
	}
	s.logger.Debug("session event", fields...)

	select {
	case s.events <- ev:
	default:
		s.logger.Warn("event queue full, dropping event", zap.String("type", string(ev.Type)))
	}

	s.subMu.Lock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("slow subscriber, dropping event", zap.String("type", string(ev.Type)))
		}
	}
	s.subMu.Unlock()
}

// Subscribe returns a channel of session events and a function that ends
// the subscription and closes the channel.
func (s *Service) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	var unsubscribed bool
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if unsubscribed {
			return
		}
		unsubscribed = true
		delete(s.subscribers, ch)
		close(ch)
	}
}

// pumpEvents delivers queued events to ingress in order. Delivery is best
// effort.
func (s *Service) pumpEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			if s.ingressClient == nil || !s.ingressClient.Enabled() {
				continue
			}
			if err := s.ingressClient.PushEvent(ctx, ev); err != nil {
				s.logger.Warn("failed to push event",
					zap.String("type", string(ev.Type)),
					zap.Error(err))
			}
		}
	}
}

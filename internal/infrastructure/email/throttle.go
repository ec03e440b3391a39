package email

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// ThrottledSender limits delivery to a fixed rate so a large roster import
// does not flood the SMTP relay.
type ThrottledSender struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottledSender wraps next. A non-positive rate disables throttling.
func NewThrottledSender(next Sender, perSecond float64) *ThrottledSender {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &ThrottledSender{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (s *ThrottledSender) Send(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for mail rate limit: %w", err)
	}
	return s.next.Send(ctx, msg)
}

package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/petasbytes/toolagent/memory"
	"github.com/petasbytes/toolagent/tools"
)

type limited struct {
	next    Model
	limiter *rate.Limiter
}

// RateLimited wraps m so that at most perMinute completions start per minute.
// perMinute <= 0 returns m unchanged.
func RateLimited(m Model, perMinute int) Model {
	if perMinute <= 0 {
		return m
	}
	return &limited{
		next:    m,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (l *limited) Complete(ctx context.Context, history []memory.Message, schemas []tools.Schema) (Reply, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return l.next.Complete(ctx, history, schemas)
}

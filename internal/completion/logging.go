package completion

import (
	"context"
	"time"

	"github.com/openitup/storycode/internal/logger"
)

// WithLogging logs request size, latency and errors.
func WithLogging(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Nop()
	}
	return func(next Client) Client {
		return &logging{next: next, log: log.With("component", "completion")}
	}
}

type logging struct {
	next Client
	log  *logger.Logger
}

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	start := time.Now()
	l.log.Debug("completion request", "client", l.next.Name(), "model", opts.Model, "prompt_bytes", len(prompt))
	out, err := l.next.Complete(ctx, prompt, opts)
	elapsed := time.Since(start)
	if err != nil {
		l.log.Error("completion failed", "client", l.next.Name(), "elapsed", elapsed, "error", err)
		return out, err
	}
	l.log.Info("completion done", "client", l.next.Name(), "elapsed", elapsed, "reply_bytes", len(out))
	return out, nil
}

package publish

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/sitebuilder/internal/retry"
)

const (
	defaultRetryInitial = 500 * time.Millisecond
	defaultRetryMax     = 10 * time.Second
)

// retryPolicy builds the backoff policy from the publish settings.
func (p *Publisher) retryPolicy() retry.Policy {
	initial, _ := time.ParseDuration(p.cfg.RetryInitialDelay)
	if initial <= 0 {
		initial = defaultRetryInitial
	}
	maxDelay, _ := time.ParseDuration(p.cfg.RetryMaxDelay)
	if maxDelay <= 0 {
		maxDelay = defaultRetryMax
	}
	return retry.NewPolicy(p.cfg.RetryBackoff, initial, maxDelay, p.cfg.MaxRetries)
}

func (p *Publisher) withRetry(ctx context.Context, op string, fn func() error) error {
	return retry.Do(ctx, p.retryPolicy(), isPermanentGitError,
		func(attempt int, err error, delay time.Duration) {
			p.logger.Warn("Retrying git operation",
				slog.String("operation", op),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()))
		}, fn)
}

// isPermanentGitError reports errors that retrying cannot fix.
func isPermanentGitError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case stdErrors.Is(err, transport.ErrAuthenticationRequired),
		stdErrors.Is(err, transport.ErrAuthorizationFailed),
		stdErrors.Is(err, transport.ErrRepositoryNotFound),
		stdErrors.Is(err, transport.ErrInvalidAuthMethod),
		stdErrors.Is(err, git.ErrNonFastForwardUpdate),
		stdErrors.Is(err, context.Canceled),
		stdErrors.Is(err, context.DeadlineExceeded):
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"auth", "permission", "denied", "not found", "does not exist", "non-fast-forward", "unsupported protocol"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	var nerr net.Error
	if stdErrors.As(err, &nerr) {
		return !nerr.Timeout()
	}
	return false
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance-dashboard/internal/authsession"
	"finance-dashboard/internal/events"
	"finance-dashboard/internal/metrics"
	"finance-dashboard/internal/upstream"

	"golang.org/x/oauth2"
)

type refresher interface {
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
}

// TokenRefreshJob renews upstream credentials shortly before they expire.
// When the finance API definitively refuses a refresh, a refresh_failed
// event is published for the client; transient failures are retried on the
// next tick.
type TokenRefreshJob struct {
	registry *authsession.Registry
	auth     refresher
	bus      events.Bus
	interval time.Duration
	before   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewTokenRefreshJob(registry *authsession.Registry, auth refresher, bus events.Bus, interval, before time.Duration, logger *slog.Logger) *TokenRefreshJob {
	return &TokenRefreshJob{
		registry: registry,
		auth:     auth,
		bus:      bus,
		interval: interval,
		before:   before,
		logger:   logger,
		now:      time.Now,
	}
}

func (j *TokenRefreshJob) Name() string {
	return "token_refresh"
}

func (j *TokenRefreshJob) Interval() time.Duration {
	return j.interval
}

func (j *TokenRefreshJob) Run(ctx context.Context) error {
	if j.interval <= 0 {
		return fmt.Errorf("token refresh job interval must be positive")
	}

	runEvery(ctx, j.interval, j.logger, j.refreshDue)
	return nil
}

func (j *TokenRefreshJob) refreshDue(ctx context.Context) error {
	var errs []error

	j.registry.Each(func(c *authsession.Controller) {
		if ctx.Err() != nil {
			return
		}
		if err := j.refreshOne(ctx, c); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}

func (j *TokenRefreshJob) refreshOne(ctx context.Context, c *authsession.Controller) error {
	if !c.Gate().IsActive() {
		return nil
	}

	// Already heading to sign-out.
	if _, pending := c.PendingNavigation(); pending {
		return nil
	}

	tok := c.Credential()
	if tok == nil || tok.Expiry.IsZero() || tok.Expiry.Sub(j.now()) > j.before {
		return nil
	}

	refreshed, err := j.auth.Refresh(ctx, tok)
	if err != nil {
		if errors.Is(err, upstream.ErrRejected) || errors.Is(err, upstream.ErrNoCredential) {
			metrics.TokenRefreshesTotal.WithLabelValues(metrics.ResultRejected).Inc()
			j.logger.Info("token refresh rejected", "client_id", c.ID(),
				"error", &authsession.AuthError{Kind: authsession.RefreshFailed, Message: "refresh rejected", Err: err})

			event := events.Event{Name: events.NameRefreshFailed, ClientID: c.ID(), At: j.now()}
			if err := j.bus.Publish(ctx, event); err != nil {
				return fmt.Errorf("failed to publish refresh failure for %s: %w", c.ID(), err)
			}
			return nil
		}

		metrics.TokenRefreshesTotal.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("failed to refresh token for %s: %w", c.ID(), err)
	}

	if !c.UpdateCredential(refreshed) {
		j.logger.Debug("discarding refreshed token, session ended meanwhile", "client_id", c.ID())
		return nil
	}

	metrics.TokenRefreshesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	j.logger.Debug("token refreshed", "client_id", c.ID(), "expires_at", refreshed.Expiry)
	return nil
}

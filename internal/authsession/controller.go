// Package authsession owns the authenticated-session lifecycle of a single
// client: sign-in, verification, sign-out, profile loads and the reaction to
// background refresh failures.
package authsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finance-dashboard/internal/events"
	"finance-dashboard/internal/gate"
	"finance-dashboard/internal/metrics"
	"finance-dashboard/internal/models"
	"finance-dashboard/internal/tokenstore"
	"finance-dashboard/internal/upstream"

	"golang.org/x/oauth2"
)

const DefaultProfileTimeout = 10 * time.Second

type Options struct {
	Auth           AuthService
	Tokens         tokenstore.Store
	Credentials    CredentialStore
	Bus            events.Bus
	Paths          Paths
	ProfileTimeout time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

// State is a point-in-time view of a controller.
type State struct {
	ClientID          string                   `json:"client_id"`
	Authenticated     bool                     `json:"authenticated"`
	Busy              bool                     `json:"busy"`
	Gate              string                   `json:"gate"`
	PendingNavigation string                   `json:"pending_navigation,omitempty"`
	ExpiresAt         time.Time                `json:"expires_at,omitzero"`
	User              Load[*models.UserDetail] `json:"user"`
	Groups            Load[[]models.Group]     `json:"groups"`
}

type Controller struct {
	id     string
	gate   *gate.Gate
	auth   AuthService
	tokens tokenstore.Store
	creds  CredentialStore
	bus    events.Bus
	paths  Paths
	logger *slog.Logger
	now    func() time.Time

	profileTimeout time.Duration

	mountOnce sync.Once
	mountErr  error

	mu                sync.Mutex
	unsubscribe       func()
	credential        *oauth2.Token
	credentialDirty   bool
	authenticated     bool
	verifyInFlight    bool
	signInInFlight    bool
	generation        uint64
	user              Load[*models.UserDetail]
	groups            Load[[]models.Group]
	pendingNavigation string
	lastActivity      time.Time

	loads sync.WaitGroup
}

func NewController(id string, opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := opts.ProfileTimeout
	if timeout <= 0 {
		timeout = DefaultProfileTimeout
	}

	return &Controller{
		id:             id,
		gate:           gate.New(),
		auth:           opts.Auth,
		tokens:         opts.Tokens,
		creds:          opts.Credentials,
		bus:            opts.Bus,
		paths:          opts.Paths,
		logger:         logger.With("client_id", id),
		now:            now,
		profileTimeout: timeout,
		lastActivity:   now(),
	}
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Gate() *gate.Gate {
	return c.gate
}

// Mount subscribes to refresh failures for this client, restores the
// persisted credential and runs the startup check. Only the first call does
// any work; concurrent callers wait for it to finish.
func (c *Controller) Mount(ctx context.Context) error {
	c.mountOnce.Do(func() {
		c.mountErr = c.mount(ctx)
	})

	return c.mountErr
}

func (c *Controller) mount(ctx context.Context) error {
	unsubscribe, err := c.bus.Subscribe(events.NameRefreshFailed, c.id, c.HandleRefreshFailed)
	if err != nil {
		return fmt.Errorf("failed to subscribe to refresh failures: %w", err)
	}

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	if tok, ok := c.creds.GetCredential(ctx); ok {
		c.credential = tok
	}
	c.mu.Unlock()

	// Skip the round trip when the local expiry already says it would fail.
	if tokenstore.IsLocallyValid(ctx, c.tokens, c.now()) {
		c.Verify(ctx)
	}

	return nil
}

// Unmount removes the refresh failure subscription and drops any profile
// load still in flight.
func (c *Controller) Unmount() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.generation++
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Verify checks the held credential against the finance API. Any failure
// leaves the client unauthenticated without forcing navigation.
func (c *Controller) Verify(ctx context.Context) bool {
	c.mu.Lock()
	c.verifyInFlight = true
	tok := c.credential
	gen := c.generation
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.verifyInFlight = false
		c.mu.Unlock()
	}()

	if tok == nil {
		metrics.VerificationsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		c.setUnauthenticated(gen)
		return false
	}

	ok, err := c.auth.Verify(ctx, tok)
	if err != nil {
		c.logger.Warn("token verification failed", "error", &AuthError{Kind: VerificationFailed, Message: "verify request failed", Err: err})
		metrics.VerificationsTotal.WithLabelValues(metrics.ResultError).Inc()
		c.setUnauthenticated(gen)
		return false
	}

	if !ok {
		c.logger.Debug("token rejected during verification")
		metrics.VerificationsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		c.setUnauthenticated(gen)
		return false
	}

	metrics.VerificationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	return c.markAuthenticated(ctx, gen, tok.Expiry)
}

// SignIn exchanges credentials for a new session. A rejection is returned as
// an *AuthError carrying a message for the user and leaves the gate as is.
func (c *Controller) SignIn(ctx context.Context, creds models.Credentials) error {
	c.mu.Lock()
	c.signInInFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.signInInFlight = false
		c.mu.Unlock()
	}()

	tok, err := c.auth.SignIn(ctx, creds)
	if err != nil {
		if errors.Is(err, upstream.ErrRejected) {
			metrics.SignInsTotal.WithLabelValues(metrics.ResultRejected).Inc()
			return &AuthError{Kind: AuthenticationRejected, Message: MessageInvalidCredentials, Err: err}
		}

		metrics.SignInsTotal.WithLabelValues(metrics.ResultError).Inc()
		return &AuthError{Kind: SignInTransportError, Message: MessageSignInUnavailable, Err: err}
	}

	// Nothing in memory changes unless the new session could be stored.
	if err := c.persist(ctx, tok); err != nil {
		metrics.SignInsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	metrics.SignInsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	c.gate.Reset()
	metrics.GateTransitions.WithLabelValues(gate.StatusActive.String()).Inc()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.credential = tok
	c.credentialDirty = false
	c.authenticated = false
	c.pendingNavigation = ""
	c.user.reset()
	c.groups.reset()
	c.lastActivity = c.now()
	c.mu.Unlock()

	c.markAuthenticated(ctx, gen, time.Time{})
	return nil
}

// SignOut tears the session down. The gate stops reporting Active before the
// remote call is made and is Invalid once it settles, whatever its outcome.
func (c *Controller) SignOut(ctx context.Context) error {
	c.gate.StartInvalidation()
	metrics.GateTransitions.WithLabelValues(gate.StatusInvalidating.String()).Inc()

	c.mu.Lock()
	c.generation++
	tok := c.credential
	c.mu.Unlock()

	var remoteErr error
	if tok != nil {
		remoteErr = c.auth.SignOut(ctx, tok)
	}

	c.gate.Invalidate()
	metrics.GateTransitions.WithLabelValues(gate.StatusInvalid.String()).Inc()

	c.mu.Lock()
	c.credential = nil
	c.credentialDirty = false
	c.authenticated = false
	c.pendingNavigation = ""
	c.user.reset()
	c.groups.reset()
	c.mu.Unlock()

	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error("failed to clear token expiry", "error", err)
	}
	if err := c.creds.ClearCredential(ctx); err != nil {
		c.logger.Error("failed to clear credential", "error", err)
	}

	switch {
	case tok == nil:
		metrics.SignOutsTotal.WithLabelValues("skipped").Inc()
	case remoteErr != nil:
		metrics.SignOutsTotal.WithLabelValues(metrics.ResultError).Inc()
		return &AuthError{Kind: SignOutTransportError, Message: "remote sign-out failed", Err: remoteErr}
	default:
		metrics.SignOutsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	}

	return nil
}

// HandleRefreshFailed records a forced navigation to the sign-out path. The
// gate is left for the sign-out flow to change.
func (c *Controller) HandleRefreshFailed(event events.Event) {
	metrics.RefreshFailedEvents.Inc()

	c.mu.Lock()
	c.pendingNavigation = c.paths.SignOut
	c.mu.Unlock()

	c.logger.Info("background token refresh failed, forcing sign-out", "at", event.At)
}

func (c *Controller) PendingNavigation() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pendingNavigation, c.pendingNavigation != ""
}

// TakePendingNavigation returns and clears the pending forced navigation.
func (c *Controller) TakePendingNavigation() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.pendingNavigation
	c.pendingNavigation = ""
	return target, target != ""
}

func (c *Controller) IsBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.verifyInFlight || c.signInInFlight
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		ClientID:          c.id,
		Authenticated:     c.authenticated && c.gate.IsActive(),
		Busy:              c.verifyInFlight || c.signInInFlight,
		Gate:              c.gate.Status().String(),
		PendingNavigation: c.pendingNavigation,
		User:              c.user,
		Groups:            c.groups,
	}
	if c.credential != nil {
		state.ExpiresAt = c.credential.Expiry
	}

	return state
}

// Credential returns the upstream credential, or nil when none is held.
func (c *Controller) Credential() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.credential
}

// UpdateCredential replaces the held credential after a background refresh.
// The new value is written to the session on the next Touch. Updates are
// ignored once the gate has left Active.
func (c *Controller) UpdateCredential(tok *oauth2.Token) bool {
	if !c.gate.IsActive() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.credential == nil {
		return false
	}

	c.credential = tok
	c.credentialDirty = true
	return true
}

// Touch records client activity and flushes persistence deferred by
// UpdateCredential. ctx must carry the client's session.
func (c *Controller) Touch(ctx context.Context) {
	c.mu.Lock()
	c.lastActivity = c.now()
	dirty := c.credentialDirty
	tok := c.credential
	c.credentialDirty = false
	c.mu.Unlock()

	if !dirty || tok == nil {
		return
	}

	if err := c.persist(ctx, tok); err != nil {
		c.logger.Error("failed to persist refreshed credential", "error", err)
	}
}

func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastActivity
}

// WaitForLoads blocks until all profile loads started so far have settled.
func (c *Controller) WaitForLoads() {
	c.loads.Wait()
}

func (c *Controller) persist(ctx context.Context, tok *oauth2.Token) error {
	if err := c.creds.SetCredential(ctx, tok); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	if err := c.tokens.SetPersistedExpiry(ctx, tok.Expiry); err != nil {
		return fmt.Errorf("failed to persist token expiry: %w", err)
	}

	return nil
}

// isCurrent reports whether results started under gen may still be applied.
// Callers hold c.mu.
func (c *Controller) isCurrent(gen uint64) bool {
	return c.generation == gen && c.gate.IsActive()
}

func (c *Controller) setUnauthenticated(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation == gen {
		c.authenticated = false
	}
}

// markAuthenticated records the transition into authenticated and starts the
// profile loads that have not been started for this session yet. A non-zero
// expiry is persisted, but only while gen is still the active session: a
// sign-out bumps the generation before it clears the store.
func (c *Controller) markAuthenticated(ctx context.Context, gen uint64, expiry time.Time) bool {
	now := c.now()

	c.mu.Lock()
	if !c.isCurrent(gen) {
		c.mu.Unlock()
		c.logger.Debug("dropping stale authentication result")
		return false
	}

	if !expiry.IsZero() {
		if err := c.tokens.SetPersistedExpiry(ctx, expiry); err != nil {
			c.logger.Error("failed to persist token expiry", "error", err)
		}
	}

	c.authenticated = true
	tok := c.credential

	startUser := !c.user.started()
	if startUser {
		c.user.begin(now)
	}
	startGroups := !c.groups.started()
	if startGroups {
		c.groups.begin(now)
	}
	c.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)

	if startUser {
		c.loads.Add(1)
		go runLoad(loadCtx, c, metrics.LoadUserDetail, gen, &c.user, func(ctx context.Context) (*models.UserDetail, error) {
			return c.auth.FetchUserDetail(ctx, tok)
		})
	}

	if startGroups {
		c.loads.Add(1)
		go runLoad(loadCtx, c, metrics.LoadUserGroups, gen, &c.groups, func(ctx context.Context) ([]models.Group, error) {
			return c.auth.FetchUserGroups(ctx, tok)
		})
	}

	return true
}

func runLoad[T any](ctx context.Context, c *Controller, name string, gen uint64, load *Load[T], fetch func(context.Context) (T, error)) {
	defer c.loads.Done()

	ctx, cancel := context.WithTimeout(ctx, c.profileTimeout)
	defer cancel()

	start := time.Now()
	data, err := fetch(ctx)
	metrics.ProfileLoadDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCurrent(gen) {
		c.logger.Debug("dropping stale profile load", "load", name)
		return
	}

	if err != nil {
		metrics.ProfileLoads.WithLabelValues(name, metrics.ResultError).Inc()
		c.logger.Warn("profile load failed", "load", name, "error", err)
		load.fail(err, c.now())
		return
	}

	metrics.ProfileLoads.WithLabelValues(name, metrics.ResultSuccess).Inc()
	load.succeed(data, c.now())
}

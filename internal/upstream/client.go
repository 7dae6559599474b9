// Package upstream talks to the remote finance REST API on behalf of a
// signed-in client.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance-dashboard/internal/config"
	"finance-dashboard/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const tracerName = "finance-dashboard/upstream"

const (
	pathVerify  = "/auth/verify"
	pathSignOut = "/auth/signout"
	pathUser    = "/users/me"
	pathGroups  = "/users/me/groups"
)

type Client struct {
	baseURL         *url.URL
	oauth2Config    *oauth2.Config
	httpClient      *http.Client
	defaultLifetime time.Duration
	tracer          trace.Tracer
	logger          *slog.Logger
	now             func() time.Time
}

func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base url: %w", err)
	}

	tokenURL := baseURL.JoinPath(cfg.TokenPath)

	return &Client{
		baseURL: baseURL,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL.String(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		defaultLifetime: cfg.DefaultTokenLifetime,
		tracer:          otel.Tracer(tracerName),
		logger:          logger,
		now:             time.Now,
	}, nil
}

// BaseURL is the root of the finance API, used by the reverse proxy.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// SignIn exchanges the user's email and password for a credential using the
// resource owner password grant.
func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (tok *oauth2.Token, err error) {
	ctx, span := c.tracer.Start(ctx, "upstream.SignIn")
	defer func() { endSpan(span, err) }()

	tok, err = c.oauth2Config.PasswordCredentialsToken(c.oauth2Context(ctx), creds.Email, creds.Password)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	tok.Expiry = tokenExpiry(tok, c.now(), c.defaultLifetime)
	return tok, nil
}

// Refresh obtains a new access token using tok's refresh token.
func (c *Client) Refresh(ctx context.Context, tok *oauth2.Token) (refreshed *oauth2.Token, err error) {
	ctx, span := c.tracer.Start(ctx, "upstream.Refresh")
	defer func() { endSpan(span, err) }()

	if tok == nil || tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", ErrRejected)
	}

	src := c.oauth2Config.TokenSource(c.oauth2Context(ctx), &oauth2.Token{RefreshToken: tok.RefreshToken})
	refreshed, err = src.Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = tok.RefreshToken
	}
	refreshed.Expiry = tokenExpiry(refreshed, c.now(), c.defaultLifetime)

	return refreshed, nil
}

// Verify asks the finance API whether tok is still accepted. A rejection is
// reported as (false, nil); only transport problems return an error.
func (c *Client) Verify(ctx context.Context, tok *oauth2.Token) (ok bool, err error) {
	ctx, span := c.tracer.Start(ctx, "upstream.Verify")
	defer func() { endSpan(span, err) }()

	if tok == nil {
		return false, nil
	}

	status, err := c.do(ctx, http.MethodGet, pathVerify, tok, nil)
	if err != nil {
		return false, err
	}

	switch {
	case status >= 200 && status < 300:
		return true, nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return false, nil
	default:
		return false, &StatusError{Method: http.MethodGet, Path: pathVerify, StatusCode: status}
	}
}

// SignOut revokes tok on the finance API. An already rejected token counts as
// signed out.
func (c *Client) SignOut(ctx context.Context, tok *oauth2.Token) (err error) {
	ctx, span := c.tracer.Start(ctx, "upstream.SignOut")
	defer func() { endSpan(span, err) }()

	if tok == nil {
		return ErrNoCredential
	}

	status, err := c.do(ctx, http.MethodPost, pathSignOut, tok, nil)
	if err != nil {
		return err
	}

	if status >= 300 && status != http.StatusUnauthorized {
		return &StatusError{Method: http.MethodPost, Path: pathSignOut, StatusCode: status}
	}

	return nil
}

func (c *Client) FetchUserDetail(ctx context.Context, tok *oauth2.Token) (user *models.UserDetail, err error) {
	ctx, span := c.tracer.Start(ctx, "upstream.FetchUserDetail")
	defer func() { endSpan(span, err) }()

	user = &models.UserDetail{}
	if err := c.getJSON(ctx, pathUser, tok, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (c *Client) FetchUserGroups(ctx context.Context, tok *oauth2.Token) (groups []models.Group, err error) {
	ctx, span := c.tracer.Start(ctx, "upstream.FetchUserGroups")
	defer func() { endSpan(span, err) }()

	groups = []models.Group{}
	if err := c.getJSON(ctx, pathGroups, tok, &groups); err != nil {
		return nil, err
	}

	return groups, nil
}

func (c *Client) getJSON(ctx context.Context, path string, tok *oauth2.Token, out any) error {
	if tok == nil {
		return ErrNoCredential
	}

	status, err := c.do(ctx, http.MethodGet, path, tok, out)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrRejected, path)
	}
	if status < 200 || status >= 300 {
		return &StatusError{Method: http.MethodGet, Path: path, StatusCode: status}
	}

	return nil
}

// do issues an authenticated request. The body is decoded into out only for
// successful responses.
func (c *Client) do(ctx context.Context, method, path string, tok *oauth2.Token, out any) (int, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upstream %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", path, err)
		}
		return resp.StatusCode, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) oauth2Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

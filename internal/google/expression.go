package google

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// ExpressionSource yields the authorization expression for the Gmail
// connector. Implementations must never log or otherwise expose the value.
type ExpressionSource interface {
	Expression(ctx context.Context) (string, error)
}

// StaticExpressionSource returns a fixed expression provided at startup.
type StaticExpressionSource string

// Expression returns the configured expression.
func (s StaticExpressionSource) Expression(_ context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("static authorization expression is empty")
	}
	return string(s), nil
}

// TokenExpressionSource mints the authorization expression from an OAuth2
// token source, so the expression follows token refreshes.
type TokenExpressionSource struct {
	ts oauth2.TokenSource
}

// NewTokenExpressionSource wraps an oauth2.TokenSource.
func NewTokenExpressionSource(ts oauth2.TokenSource) *TokenExpressionSource {
	return &TokenExpressionSource{ts: ts}
}

// Expression returns the current bearer token as the CEL expression value.
func (s *TokenExpressionSource) Expression(_ context.Context) (string, error) {
	token, err := s.ts.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token for authorization expression: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token source returned an empty access token")
	}
	return token.AccessToken, nil
}

// TokenSourceFromFile builds a refreshable token source from a stored token
// file. The file holds two whitespace-separated fields: access token and
// refresh token. Refresh requires GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET;
// without them the access token is used as-is until it expires.
func TokenSourceFromFile(ctx context.Context, path string) (oauth2.TokenSource, error) {
	slurp, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token file format: want 2 fields, got %d", len(f))
	}

	token := &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	}

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		// No refresh credentials: expose the stored access token directly.
		token.Expiry = time.Time{}
		return oauth2.StaticTokenSource(token), nil
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	return conf.TokenSource(ctx, token), nil
}

package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestStaticExpressionSource(t *testing.T) {
	src := StaticExpressionSource("ya29.expr")
	expr, err := src.Expression(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.expr", expr)
}

func TestStaticExpressionSourceEmpty(t *testing.T) {
	src := StaticExpressionSource("")
	_, err := src.Expression(context.Background())
	assert.Error(t, err)
}

func TestTokenExpressionSource(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ya29.minted"})
	src := NewTokenExpressionSource(ts)

	expr, err := src.Expression(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.minted", expr)
}

func TestTokenExpressionSourceEmptyAccessToken(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{})
	src := NewTokenExpressionSource(ts)

	_, err := src.Expression(context.Background())
	assert.Error(t, err)
}

func TestTokenSourceFromFile(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "gmail.token")
	require.NoError(t, os.WriteFile(path, []byte("ya29.access refresh-token\n"), 0600))

	ts, err := TokenSourceFromFile(context.Background(), path)
	require.NoError(t, err)

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", token.AccessToken)
}

func TestTokenSourceFromFileInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gmail.token")
	require.NoError(t, os.WriteFile(path, []byte("only-one-field"), 0600))

	_, err := TokenSourceFromFile(context.Background(), path)
	assert.ErrorContains(t, err, "invalid token file format")
}

func TestTokenSourceFromFileMissing(t *testing.T) {
	_, err := TokenSourceFromFile(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

package mendeley

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenRoundTrip(t *testing.T) {
	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	encoded, err := EncodeToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		Expiry:       expiry,
	})
	require.NoError(t, err)

	tok, err := DecodeToken(encoded)
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.True(t, expiry.Equal(tok.Expiry))
}

func TestDecodeToken_ExpiresAt(t *testing.T) {
	raw := `{"access_token":"a","refresh_token":"r","token_type":"bearer","expires_in":3600,"expires_at":1610000000.5}`
	tok, err := DecodeToken(base64.StdEncoding.EncodeToString([]byte(raw)))
	require.NoError(t, err)
	assert.Equal(t, int64(1610000000), tok.Expiry.Unix())
}

func TestDecodeToken_Invalid(t *testing.T) {
	_, err := DecodeToken("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = DecodeToken("%%%")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = DecodeToken(base64.StdEncoding.EncodeToString([]byte(`{}`)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthConfig_OAuth2(t *testing.T) {
	cfg := (&AuthConfig{ClientID: "123", ClientSecret: "s", RedirectURI: "http://localhost:5000/oauth"}).OAuth2()
	assert.Equal(t, DefaultBaseURL+"/oauth/authorize", cfg.Endpoint.AuthURL)
	assert.Equal(t, DefaultBaseURL+"/oauth/token", cfg.Endpoint.TokenURL)
	assert.Contains(t, cfg.AuthCodeURL("st"), "state=st")
	assert.Contains(t, cfg.AuthCodeURL("st"), "scope=all")
}

func TestServeCallback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	var code string
	var cbErr error
	go func() {
		defer close(done)
		code, cbErr = serveCallback(context.Background(), ln, "/oauth", "xyz")
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/oauth?code=c0de&state=xyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	<-done
	require.NoError(t, cbErr)
	assert.Equal(t, "c0de", code)
}

func TestServeCallback_StateMismatch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := serveCallback(context.Background(), ln, "/oauth", "xyz")
		done <- err
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/oauth?code=c0de&state=evil")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.ErrorIs(t, <-done, ErrStateMismatch)
}

func TestServeCallback_Canceled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = serveCallback(ctx, ln, "/oauth", "xyz")
	assert.ErrorIs(t, err, context.Canceled)
}

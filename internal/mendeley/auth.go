package mendeley

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const (
	authAuthorize = "/oauth/authorize"
	authToken     = "/oauth/token"
	authScope     = "all"
)

var (
	ErrNoToken       = errors.New("mendeley: oauth token missing")
	ErrInvalidToken  = errors.New("mendeley: oauth token invalid")
	ErrStateMismatch = errors.New("mendeley: oauth state mismatch")
)

// AuthConfig holds the registered OAuth application
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BaseURL      string // BaseURL defaults to DefaultBaseURL
}

func (a *AuthConfig) OAuth2() *oauth2.Config {
	base := a.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &oauth2.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  a.RedirectURI,
		Scopes:       []string{authScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  base + authAuthorize,
			TokenURL: base + authToken,
		},
	}
}

// TokenSource refreshes tok through the token endpoint when it expires
func (a *AuthConfig) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return a.OAuth2().TokenSource(ctx, tok)
}

// storedToken accepts both the oauth2 package layout and the older
// `expires_at` epoch seconds layout found in existing config files.
type storedToken struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	ExpiresAt    float64   `json:"expires_at,omitempty"`
}

// EncodeToken serializes a token as base64 encoded JSON
func EncodeToken(tok *oauth2.Token) (string, error) {
	data, err := json.Marshal(&storedToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func DecodeToken(encoded string) (*oauth2.Token, error) {
	if encoded == "" {
		return nil, ErrNoToken
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if st.AccessToken == "" && st.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no access or refresh token", ErrInvalidToken)
	}

	tok := &oauth2.Token{
		AccessToken:  st.AccessToken,
		TokenType:    st.TokenType,
		RefreshToken: st.RefreshToken,
		Expiry:       st.Expiry,
	}
	if tok.Expiry.IsZero() && st.ExpiresAt > 0 {
		tok.Expiry = time.Unix(int64(st.ExpiresAt), 0)
	}
	return tok, nil
}

const callbackHTML = `<html>
<head><title>papersync</title></head>
<body>Login succeeded. You can close this window or tab.<br />
Please follow the messages in the terminal to save your token.</body>
</html>`

// ListenForCode serves exactly one OAuth callback on the redirect URI's host
// and returns the authorization code.
func ListenForCode(ctx context.Context, redirectURI, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("redirect uri: %w", err)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return "", fmt.Errorf("callback listen: %w", err)
	}
	return serveCallback(ctx, ln, u.Path, state)
}

func serveCallback(ctx context.Context, ln net.Listener, path, state string) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	if path == "" {
		path = "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res result
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("mendeley: authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			res.err = ErrStateMismatch
		case q.Get("code") == "":
			res.err = errors.New("mendeley: callback without code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(callbackHTML))
		}

		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		// let the browser get its response before the listener goes away
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		return res.code, res.err
	}
}

package mangadex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mangasan-dev/mangasan/log"
	"github.com/mangasan-dev/mangasan/open"
	"golang.org/x/oauth2"
)

// OpenID Connect paths on the dedicated auth host.
const (
	oauthAuthPath   = "/realms/mangadex/protocol/openid-connect/auth"
	oauthTokenPath  = "/realms/mangadex/protocol/openid-connect/token"
	oauthLogoutPath = "/realms/mangadex/protocol/openid-connect/logout"
)

const successHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authentication Successful</title>
    <style>
        body { margin: 0; padding: 0; background-color: #191a1c; color: #ffffff; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; text-align: center; }
        h1 { font-size: 24px; font-weight: 500; margin-bottom: 8px; }
        p { font-size: 15px; color: #88888b; }
    </style>
</head>
<body>
    <div>
        <h1>Authentication Successful</h1>
        <p>You may safely close this tab and return to the terminal.</p>
    </div>
</body>
</html>`

const errorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Authentication Failed</title>
    <style>
        body { margin: 0; padding: 0; background-color: #191a1c; color: #ffffff; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; text-align: center; }
        h1 { font-size: 24px; font-weight: 500; margin-bottom: 8px; color: #ff5555; }
        p { font-size: 15px; color: #88888b; }
    </style>
</head>
<body>
    <div>
        <h1>Authentication Failed</h1>
        <p>%s</p>
    </div>
</body>
</html>`

// oauthConfig builds the OAuth2 configuration against the client's auth host.
func (c *Client) oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.oauthID,
		ClientSecret: c.oauthSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authURL + oauthAuthPath,
			TokenURL: c.authURL + oauthTokenPath,
		},
	}
}

// oauthContext makes the token exchanges go through the client's HTTP client
// so tests and transport overrides apply to them too.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

// mintOAuth performs the password grant against the OpenID Connect token
// endpoint.
func (c *Client) mintOAuth(ctx context.Context) (authState, error) {
	cfg := c.oauthConfig("")
	tok, err := cfg.PasswordCredentialsToken(c.oauthContext(ctx), c.username, c.password)
	if err != nil {
		return authState{}, &LoginError{APIError{Body: err.Error()}}
	}

	return authState{
		session:     tok.AccessToken,
		refresh:     tok.RefreshToken,
		lastRefresh: time.Now().Add(-30 * time.Second),
	}, nil
}

// refreshOAuth exchanges an OAuth2 refresh token for a new access token.
func (c *Client) refreshOAuth(ctx context.Context, refreshToken string, last time.Time) (authState, error) {
	cfg := c.oauthConfig("")
	source := cfg.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})

	tok, err := source.Token()
	if err != nil {
		log.Debugf("oauth token refresh failed: %s", err)
		return authState{}, &RefreshError{
			APIError:    APIError{Body: err.Error()},
			LastRefresh: last,
		}
	}

	refreshed := tok.RefreshToken
	if refreshed == "" {
		refreshed = refreshToken
	}

	return authState{
		session:     tok.AccessToken,
		refresh:     refreshed,
		lastRefresh: time.Now(),
	}, nil
}

// AuthenticateWithBrowser runs the OAuth2 authorization code flow through the
// user's browser, listening for the redirect on a local callback server. On
// success the client holds freshly minted tokens.
func (c *Client) AuthenticateWithBrowser(ctx context.Context, callbackPort int) error {
	if c.oauthID == "" || c.oauthSecret == "" {
		return fmt.Errorf("mangadex: browser login needs a registered OAuth2 client")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	redirectURL := fmt.Sprintf("http://localhost:%d/oauth/callback", callbackPort)
	cfg := c.oauthConfig(redirectURL)

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", callbackPort),
		Handler: mux,
	}

	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		errorParam := r.URL.Query().Get("error")

		w.Header().Set("Content-Type", "text/html")

		if errorParam != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, errorHTML, errorParam)
			errCh <- fmt.Errorf("oauth error: %s", errorParam)
			return
		}

		if code == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, errorHTML, "No authorization code received.")
			errCh <- fmt.Errorf("no authorization code received")
			return
		}

		tok, err := cfg.Exchange(c.oauthContext(r.Context()), code)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, errorHTML, "Failed to exchange code for token.")
			errCh <- fmt.Errorf("exchange failed: %w", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, successHTML)
		tokenCh <- tok
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("failed to start local server: %w", err)
		}
	}()
	defer srv.Shutdown(ctx)

	authURL := cfg.AuthCodeURL("", oauth2.SetAuthURLParam("response_type", "code"))
	if err := open.Start(authURL); err != nil {
		log.Warnf("failed to open browser: %s", err)
		fmt.Printf("Please manually visit: %s\n", authURL)
	}

	log.Infof("waiting for oauth callback on port %d", callbackPort)

	var tok *oauth2.Token
	select {
	case tok = <-tokenCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("authentication timed out")
	}

	c.mu.Lock()
	c.state = authState{
		session:     tok.AccessToken,
		refresh:     tok.RefreshToken,
		lastRefresh: time.Now().Add(-30 * time.Second),
	}
	c.mu.Unlock()
	c.authed = true

	return nil
}

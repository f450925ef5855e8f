package authenticator

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// Session keys used by the login flow.
const (
	// KeyLoginState holds the pending LoginState between the authorize
	// redirect and the callback.
	KeyLoginState = "sso_login_state"

	// KeySignedIn is set once a login has completed through this flow.
	KeySignedIn = "sso_signed_in"
)

// StateStore is the per-browser-session key/value store the core operates
// on. Implementations wrap whatever session mechanism the host uses; the
// core never reaches for ambient session state itself.
//
// Consume removes the value under key and returns it, reporting whether
// it was present. Implementations must make it atomic with respect to
// other Consume calls on the same session: of two concurrent callbacks
// racing for the pending state, exactly one may receive it.
type StateStore interface {
	Get(key string) interface{}
	Set(key string, value interface{}) error
	Invalidate(key string) error
	Consume(key string) (interface{}, bool)
}

// LoginState is the anti-forgery record created when a login attempt
// starts and consumed exactly once when the callback arrives.
type LoginState struct {
	Nonce      string
	RedirectTo string
}

// newNonce returns an unpredictable anti-forgery token. 32 bytes of
// entropy, well above the 128-bit minimum the state parameter requires.
func newNonce() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SafeRedirect returns target if it is a safe local path, otherwise
// fallback. Useful for choosing where to send the browser after login.
func SafeRedirect(target, fallback string) string {
	if s := sanitizeRedirect(target); s != "" {
		return s
	}
	return fallback
}

// sanitizeRedirect validates a post-login redirect target. Only local
// paths are accepted; anything absolute or scheme-relative is dropped so
// the callback can never bounce the browser off-site.
func sanitizeRedirect(target string) string {
	if target == "" {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	if u.Scheme != "" || u.Host != "" {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return ""
	}
	return u.String()
}

package authenticator

import (
	"crypto/subtle"
	"net/url"
)

// resolveCallback validates the provider's redirect back to the callback
// endpoint. The stored anti-forgery state is consumed exactly once, in a
// single atomic step before the comparison result is known, so a replayed
// or concurrently duplicated callback always fails with missing_state.
func resolveCallback(st StateStore, query url.Values) (code string, redirectTo string, lerr *LoginError) {
	if e := query.Get("error"); e != "" {
		// The provider rejected the attempt; nothing left to consume.
		_ = st.Invalidate(KeyLoginState)
		return "", "", identityProviderError(e, query.Get("error_description"))
	}

	code = query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		return "", "", protocolError("missing_parameters", "the authorization code or state is missing")
	}

	raw, present := st.Consume(KeyLoginState)
	pending, ok := raw.(LoginState)
	if !present || !ok {
		return "", "", protocolError("missing_state", "no login attempt is pending for this session")
	}

	if subtle.ConstantTimeCompare([]byte(state), []byte(pending.Nonce)) != 1 {
		return "", "", protocolError("state_invalid", "the state parameter does not match this session")
	}

	return code, pending.RedirectTo, nil
}

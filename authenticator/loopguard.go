package authenticator

import "net/http"

// AntiLockoutParam is the query marker that always suppresses automatic
// SSO initiation, so an administrator can reach the manual login form
// even when auto-redirect is enabled globally.
const AntiLockoutParam = "no_sso"

// OverrideFunc lets an extension replace the auto-redirect decision for
// a deployment. It receives the configured flag and returns the
// effective one.
type OverrideFunc func(enabled bool) bool

// ShouldAutoRedirect decides whether an unauthenticated view of the
// login page may initiate SSO without user interaction. It exists to
// keep the browser out of a redirect loop between the local login page
// and the identity provider: any condition that makes the manual form
// necessary short-circuits to false.
func ShouldAutoRedirect(r *http.Request, enabled bool, override OverrideFunc) bool {
	if override != nil {
		enabled = override(enabled)
	}
	if !enabled {
		return false
	}

	q := r.URL.Query()
	if q.Has(AntiLockoutParam) {
		return false
	}

	// Only the plain "show login form" action may auto-redirect. A
	// logout or an explicit logged-out notice must render normally.
	action := q.Get("action")
	if action == "" {
		action = "login"
	}
	if q.Has("loggedout") {
		action = "loggedout"
	}
	if action != "login" {
		return false
	}

	// A provider response or a manually submitted local-login form must
	// be allowed to complete, not be re-intercepted.
	if q.Get("code") != "" || q.Get("error") != "" {
		return false
	}
	if r.Method == http.MethodPost {
		return false
	}

	return true
}

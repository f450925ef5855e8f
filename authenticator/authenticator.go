package authenticator

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// DefaultAuthority is the Microsoft Entra ID login host.
const DefaultAuthority = "https://login.microsoftonline.com"

const defaultTimeout = 15 * time.Second

// ErrNotRegistered is returned by a UserDirectory when no local account
// matches the asserted email.
var ErrNotRegistered = errors.New("no local account for email")

// Config holds the identity provider credentials and endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	TenantID     string

	// Authority is the base URL of the identity provider. Defaults to
	// DefaultAuthority; tests point it at a fake provider.
	Authority string

	// RedirectURL is the absolute URL of the callback endpoint, fixed for
	// both the authorize request and the token exchange.
	RedirectURL string

	// Scopes defaults to "openid profile email".
	Scopes []string

	// Timeout bounds every call to the provider. The token exchange is
	// the only blocking operation in a login attempt; it must fail fast
	// rather than hang the request.
	Timeout time.Duration
}

// Configured reports whether all required credentials are present.
// Login initiation fails closed while any of them is missing.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TenantID != ""
}

func (c Config) authority() string {
	if c.Authority != "" {
		return strings.TrimSuffix(c.Authority, "/")
	}
	return DefaultAuthority
}

func (c Config) scopes() []string {
	if len(c.Scopes) != 0 {
		return c.Scopes
	}
	return []string{oidc.ScopeOpenID, "profile", "email"}
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

// IssuerURL returns the OIDC issuer for the configured tenant.
func (c Config) IssuerURL() string {
	return c.authority() + "/" + url.PathEscape(c.TenantID) + "/v2.0"
}

func (c Config) authorizeURL() string {
	return c.authority() + "/" + url.PathEscape(c.TenantID) + "/oauth2/v2.0/authorize"
}

func (c Config) tokenURL() string {
	return c.authority() + "/" + url.PathEscape(c.TenantID) + "/oauth2/v2.0/token"
}

// Identity is a resolved local account reference.
type Identity struct {
	UserID int
	Email  string
	Name   string
}

// UserDirectory maps a verified email claim onto a local account.
// FindByEmail returns ErrNotRegistered when no account matches;
// Provision creates one when auto-provisioning is enabled.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	Provision(ctx context.Context, email, name string) (*Identity, error)
}

// Options are the per-attempt behavior toggles read from settings.
type Options struct {
	// AutoProvision creates a local account for unknown emails instead
	// of failing with user_not_found.
	AutoProvision bool
}

// OutcomeKind tags the result of an orchestrator step.
type OutcomeKind int

const (
	// OutcomeRedirect tells the host to send the browser to RedirectURL
	// and stop handling the request.
	OutcomeRedirect OutcomeKind = iota + 1

	// OutcomeAuthenticated carries the resolved identity and the
	// post-login target restored from the session.
	OutcomeAuthenticated

	// OutcomeFailed carries the structured login error.
	OutcomeFailed
)

// Outcome is the tagged result returned to the host's authentication
// hook. Exactly one of RedirectURL, User or Err is meaningful, selected
// by Kind.
type Outcome struct {
	Kind        OutcomeKind
	RedirectURL string
	User        *Identity
	RedirectTo  string
	Err         *LoginError
}

func redirectOutcome(url string) *Outcome {
	return &Outcome{Kind: OutcomeRedirect, RedirectURL: url}
}

func authenticatedOutcome(user *Identity, redirectTo string) *Outcome {
	return &Outcome{Kind: OutcomeAuthenticated, User: user, RedirectTo: redirectTo}
}

func failedOutcome(err *LoginError) *Outcome {
	return &Outcome{Kind: OutcomeFailed, Err: err}
}

// Authenticator sequences one browser session's login attempt:
// authorize redirect, callback validation, token exchange and identity
// resolution. All session state goes through the StateStore passed into
// each call; nothing is shared across sessions.
type Authenticator struct {
	cfg    Config
	oauth  oauth2.Config
	users  UserDirectory
	client *http.Client
	log    logrus.FieldLogger

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

// New creates an authenticator. No network calls happen here; provider
// discovery is deferred until the first ID token must be verified.
func New(cfg Config, users UserDirectory, log logrus.FieldLogger) *Authenticator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Authenticator{
		cfg: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.scopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.authorizeURL(),
				TokenURL: cfg.tokenURL(),
			},
		},
		users:  users,
		client: &http.Client{Timeout: cfg.timeout()},
		log:    log,
	}
}

// Configured reports whether the provider credentials are complete.
func (a *Authenticator) Configured() bool {
	return a.cfg.Configured()
}

// StartLogin begins the authorization-code flow: it stores a fresh
// anti-forgery state in the session and returns the authorize redirect.
// Fails closed with a configuration error when credentials are missing.
func (a *Authenticator) StartLogin(st StateStore, redirectTo string) *Outcome {
	if !a.cfg.Configured() {
		return failedOutcome(configurationError("unconfigured",
			"client_id, client_secret and tenant_id must all be set"))
	}

	nonce, err := newNonce()
	if err != nil {
		return failedOutcome(protocolError("nonce_generation_failed", err.Error()))
	}

	state := LoginState{Nonce: nonce, RedirectTo: sanitizeRedirect(redirectTo)}
	if err := st.Set(KeyLoginState, state); err != nil {
		return failedOutcome(protocolError("session_write_failed", err.Error()))
	}

	return redirectOutcome(a.oauth.AuthCodeURL(nonce))
}

// HandleCallback runs the callback resolver, token exchanger and
// identity resolver in strict sequence, short-circuiting on the first
// failure. On success the session is marked signed-in and the stored
// post-login target is restored into the outcome.
func (a *Authenticator) HandleCallback(ctx context.Context, st StateStore, query url.Values, opts Options) *Outcome {
	code, redirectTo, lerr := resolveCallback(st, query)
	if lerr != nil {
		a.log.WithFields(logrus.Fields{"kind": lerr.Kind, "code": lerr.Code}).Warn("SSO callback rejected")
		return failedOutcome(lerr)
	}

	pair, lerr := a.exchange(ctx, code)
	if lerr != nil {
		a.log.WithFields(logrus.Fields{"kind": lerr.Kind, "code": lerr.Code}).Warn("token exchange failed")
		return failedOutcome(lerr)
	}

	user, lerr := a.resolveIdentity(ctx, pair.IDToken, opts)
	if lerr != nil {
		a.log.WithFields(logrus.Fields{"kind": lerr.Kind, "code": lerr.Code}).Warn("identity resolution failed")
		return failedOutcome(lerr)
	}

	if err := st.Set(KeySignedIn, true); err != nil {
		return failedOutcome(protocolError("session_write_failed", err.Error()))
	}

	a.log.WithField("email", user.Email).Info("SSO login completed")
	return authenticatedOutcome(user, redirectTo)
}

// SignedIn reports whether this session completed a login through the
// SSO flow. The post-login redirect only fires when it did.
func SignedIn(st StateStore) bool {
	v, _ := st.Get(KeySignedIn).(bool)
	return v
}

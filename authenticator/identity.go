package authenticator

import (
	"context"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
)

// idTokenVerifier returns the verifier for the configured tenant,
// discovering the provider's signing keys on first use. Discovery and
// JWKS fetches run through the bounded-timeout client.
func (a *Authenticator) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, *LoginError) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.verifier == nil {
		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, a.client), a.cfg.IssuerURL())
		if err != nil {
			return nil, transportError(err)
		}
		a.verifier = provider.Verifier(&oidc.Config{ClientID: a.cfg.ClientID})
	}
	return a.verifier, nil
}

// resolveIdentity verifies the ID token (signature against the
// provider's published keys, plus issuer, audience and validity claims)
// and maps its email claim onto a local account. Claims are never
// trusted before verification succeeds.
func (a *Authenticator) resolveIdentity(ctx context.Context, rawIDToken string, opts Options) (*Identity, *LoginError) {
	verifier, lerr := a.idTokenVerifier(ctx)
	if lerr != nil {
		return nil, lerr
	}

	idToken, err := verifier.Verify(oidc.ClientContext(ctx, a.client), rawIDToken)
	if err != nil {
		return nil, protocolError("token_invalid", err.Error())
	}

	var claims struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, protocolError("claims_invalid", err.Error())
	}
	if claims.Email == "" {
		return nil, protocolError("missing_email_claim", "the ID token carries no email claim")
	}

	user, err := a.users.FindByEmail(ctx, claims.Email)
	if errors.Is(err, ErrNotRegistered) {
		if !opts.AutoProvision {
			return nil, userNotFoundError(claims.Email)
		}
		name := claims.Name
		if name == "" {
			name = claims.PreferredUsername
		}
		user, err = a.users.Provision(ctx, claims.Email, name)
		if err != nil {
			return nil, protocolError("provisioning_failed", err.Error())
		}
		a.log.WithField("email", claims.Email).Info("provisioned local account for SSO user")
		return user, nil
	}
	if err != nil {
		return nil, protocolError("directory_failure", err.Error())
	}

	return user, nil
}

package authenticator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenPair is the result of a successful code-for-tokens exchange.
// Nothing here is cached or persisted; every login performs a fresh
// exchange.
type TokenPair struct {
	IDToken     string
	AccessToken string
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	IDToken          string `json:"id_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// exchange posts the authorization code to the token endpoint. The
// redirect URI must byte-for-byte match the one sent with the authorize
// request; the provider rejects the exchange otherwise. Single attempt,
// bounded by the configured client timeout.
func (a *Authenticator) exchange(ctx context.Context, code string) (*TokenPair, *LoginError) {
	form := url.Values{
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {a.cfg.RedirectURL},
		"grant_type":    {"authorization_code"},
		"scope":         {strings.Join(a.oauth.Scopes, " ")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.oauth.Endpoint.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, transportError(err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, protocolError("empty_response", "the response from the token endpoint was empty")
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, protocolError("invalid_response", "the token endpoint did not return valid JSON")
	}

	if tr.Error != "" {
		return nil, identityProviderError(tr.Error, tr.ErrorDescription)
	}

	if tr.IDToken == "" {
		return nil, protocolError("missing_id_token", "the token response carries no id_token")
	}

	return &TokenPair{IDToken: tr.IDToken, AccessToken: tr.AccessToken}, nil
}

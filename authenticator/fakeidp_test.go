package authenticator

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fakeIdP is an in-process identity provider serving the discovery
// document, a JWKS endpoint and a token endpoint, so the full flow can
// run against real signature verification.
type fakeIdP struct {
	t        *testing.T
	key      *rsa.PrivateKey
	srv      *httptest.Server
	tenant   string
	clientID string

	// email/name are baked into tokens minted by the default token
	// endpoint handler.
	email string
	name  string

	// tokenHandler overrides the token endpoint when set.
	tokenHandler http.HandlerFunc
}

func newFakeIdP(t *testing.T, tenant, clientID string) *fakeIdP {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	f := &fakeIdP{
		t:        t,
		key:      key,
		tenant:   tenant,
		clientID: clientID,
		email:    "user@example.com",
		name:     "Test User",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/"+tenant+"/v2.0/.well-known/openid-configuration", f.serveDiscovery)
	mux.HandleFunc("/keys", f.serveJWKS)
	mux.HandleFunc("/"+tenant+"/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		if f.tokenHandler != nil {
			f.tokenHandler(w, r)
			return
		}
		f.serveToken(w, r)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIdP) issuer() string {
	return f.srv.URL + "/" + f.tenant + "/v2.0"
}

// config returns an authenticator Config pointed at this fake provider.
func (f *fakeIdP) config() Config {
	return Config{
		ClientID:     f.clientID,
		ClientSecret: "test-secret",
		TenantID:     f.tenant,
		Authority:    f.srv.URL,
		RedirectURL:  "https://portal.example.com/callback",
		Timeout:      5 * time.Second,
	}
}

func (f *fakeIdP) serveDiscovery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"issuer":                 f.issuer(),
		"authorization_endpoint": f.srv.URL + "/" + f.tenant + "/oauth2/v2.0/authorize",
		"token_endpoint":         f.srv.URL + "/" + f.tenant + "/oauth2/v2.0/token",
		"jwks_uri":               f.srv.URL + "/keys",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (f *fakeIdP) serveJWKS(w http.ResponseWriter, r *http.Request) {
	pub := f.key.Public().(*rsa.PublicKey)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"use": "sig",
			"alg": "RS256",
			"kid": "test-key",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (f *fakeIdP) serveToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if r.PostFormValue("grant_type") != "authorization_code" {
		f.respondError(w, "unsupported_grant_type", "only authorization_code is supported")
		return
	}
	if r.PostFormValue("code") == "" {
		f.respondError(w, "invalid_request", "code is missing")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token_type":   "Bearer",
		"expires_in":   3600,
		"access_token": "access-token-123",
		"id_token":     f.mintIDToken(f.email, f.name, f.key),
	})
}

func (f *fakeIdP) respondError(w http.ResponseWriter, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, `{"error":%q,"error_description":%q}`, code, description)
}

// mintIDToken signs an ID token for this provider's issuer and client.
// Passing a foreign key produces a token the verifier must reject.
func (f *fakeIdP) mintIDToken(email, name string, key *rsa.PrivateKey) string {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   f.issuer(),
		"aud":   f.clientID,
		"sub":   "sub-" + email,
		"email": email,
		"name":  name,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "test-key"

	signed, err := token.SignedString(key)
	if err != nil {
		f.t.Fatalf("failed to sign ID token: %v", err)
	}
	return signed
}

// memStateStore is an in-memory StateStore standing in for the
// session-backed one the HTTP layer provides.
type memStateStore struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func newMemStateStore() *memStateStore {
	return &memStateStore{values: make(map[string]interface{})}
}

func (s *memStateStore) Get(key string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *memStateStore) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memStateStore) Invalidate(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *memStateStore) Consume(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if ok {
		delete(s.values, key)
	}
	return value, ok
}

// fakeDirectory is an in-memory UserDirectory.
type fakeDirectory struct {
	users       map[string]*Identity
	provisioned []string
}

func newFakeDirectory(emails ...string) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]*Identity)}
	for i, email := range emails {
		d.users[email] = &Identity{UserID: i + 1, Email: email, Name: "User " + email}
	}
	return d
}

func (d *fakeDirectory) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	if user, ok := d.users[email]; ok {
		return user, nil
	}
	return nil, ErrNotRegistered
}

func (d *fakeDirectory) Provision(ctx context.Context, email, name string) (*Identity, error) {
	user := &Identity{UserID: len(d.users) + 1, Email: email, Name: name}
	d.users[email] = user
	d.provisioned = append(d.provisioned, email)
	return user, nil
}

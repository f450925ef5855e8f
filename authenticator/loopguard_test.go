package authenticator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldAutoRedirect(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		method   string
		enabled  bool
		override OverrideFunc
		want     bool
	}{
		{
			name:    "flag enabled plain login view",
			target:  "/login",
			enabled: true,
			want:    true,
		},
		{
			name:    "flag disabled",
			target:  "/login",
			enabled: false,
			want:    false,
		},
		{
			name:     "override forces off",
			target:   "/login",
			enabled:  true,
			override: func(bool) bool { return false },
			want:     false,
		},
		{
			name:     "override forces on",
			target:   "/login",
			enabled:  false,
			override: func(bool) bool { return true },
			want:     true,
		},
		{
			name:    "anti-lockout marker wins over the flag",
			target:  "/login?" + AntiLockoutParam,
			enabled: true,
			want:    false,
		},
		{
			name:    "logout action",
			target:  "/login?action=logout",
			enabled: true,
			want:    false,
		},
		{
			name:    "logged-out notice",
			target:  "/login?loggedout=true",
			enabled: true,
			want:    false,
		},
		{
			name:    "provider code already present",
			target:  "/login?code=abc&state=xyz",
			enabled: true,
			want:    false,
		},
		{
			name:    "provider error already present",
			target:  "/login?error=access_denied",
			enabled: true,
			want:    false,
		},
		{
			name:    "manual form submission",
			target:  "/login",
			method:  http.MethodPost,
			enabled: true,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			var r *http.Request
			if method == http.MethodPost {
				r = httptest.NewRequest(method, tt.target, strings.NewReader("email=x&password=y"))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			} else {
				r = httptest.NewRequest(method, tt.target, nil)
			}

			assert.Equal(t, tt.want, ShouldAutoRedirect(r, tt.enabled, tt.override))
		})
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/services"
	"github.com/mkoenig/ssoportal/userctx"
)

// AuditLogger records all POST/PUT/DELETE requests in the audit trail
func AuditLogger(audit services.AuditService, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only log mutation operations
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete {
				entry := &models.AuditLogEntry{
					UserEmail: userctx.GetUserEmail(r.Context()),
					Event:     models.AuditSettingsUpdate,
					Detail:    r.Method + " " + r.URL.Path + " " + captureFormData(r),
					UserAgent: r.UserAgent(),
					IPAddress: GetIPAddress(r),
				}

				if err := audit.Record(r.Context(), entry); err != nil {
					log.WithError(err).Error("Failed to create audit log")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetIPAddress extracts the client IP, checking X-Forwarded-For first
func GetIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		// Take first IP if multiple
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	// Remove port if present
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// captureFormData captures form data as a JSON string.
// Secrets never reach the audit trail.
func captureFormData(r *http.Request) string {
	if err := r.ParseForm(); err != nil {
		return ""
	}

	formMap := make(map[string]interface{})
	for key, values := range r.Form {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
			formMap[key] = "[redacted]"
			continue
		}
		if len(values) == 1 {
			formMap[key] = values[0]
		} else {
			formMap[key] = values
		}
	}

	jsonData, err := json.Marshal(formMap)
	if err != nil {
		return ""
	}

	return string(jsonData)
}

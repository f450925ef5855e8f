package models

import "time"

// Audit log event types.
const (
	AuditLoginSuccess   = "login_success"
	AuditLoginFailed    = "login_failed"
	AuditLocalLogin     = "local_login"
	AuditLogout         = "logout"
	AuditSettingsUpdate = "settings_update"
)

// AuditLogEntry represents a single authentication or admin event
type AuditLogEntry struct {
	ID        string
	Timestamp time.Time
	UserEmail string
	Event     string
	Detail    string
	UserAgent string
	IPAddress string
}

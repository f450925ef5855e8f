package controllers

import (
	"errors"
	"net/http"
	"strings"

	"gitea.com/go-chi/session"
	"github.com/sirupsen/logrus"

	"github.com/mkoenig/ssoportal/authenticator"
	"github.com/mkoenig/ssoportal/metrics"
	"github.com/mkoenig/ssoportal/middleware"
	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/services"
)

// AuthController handles both login flavors: the SSO flow against the
// identity provider and the local email/password fallback.
type AuthController struct {
	auth     *authenticator.Authenticator
	services *services.Services
	log      logrus.FieldLogger

	// AutoRedirectOverride, when set, gets the final say on whether the
	// login page bounces straight to the identity provider.
	AutoRedirectOverride authenticator.OverrideFunc
}

// NewAuthController creates a new auth controller
func NewAuthController(auth *authenticator.Authenticator, services *services.Services, log logrus.FieldLogger) *AuthController {
	return &AuthController{
		auth:     auth,
		services: services,
		log:      log,
	}
}

// loginPageData feeds templates/login.html
type loginPageData struct {
	Title      string
	ButtonText string
	Error      string
	Notice     string
	RedirectTo string
}

// LoginPage handles GET /login. Depending on settings it either renders
// the login form or sends the browser straight to the identity provider.
// Appending ?no_sso to the URL always shows the form, so the local
// fallback stays reachable even with auto-redirect misconfigured.
func (c *AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	if _, ok := sess.Get("user_id").(int); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	settings := c.settings(r)

	if authenticator.ShouldAutoRedirect(r, settings.AutoRedirect, c.AutoRedirectOverride) {
		metrics.RecordAutoRedirect()
		c.startSSO(w, r, r.URL.Query().Get("redirect_to"))
		return
	}

	notice := ""
	if r.URL.Query().Has("loggedout") {
		notice = "You have been signed out."
	}
	c.renderLogin(w, http.StatusOK, settings, "", notice, r.URL.Query().Get("redirect_to"))
}

// LocalLogin handles POST /login, the email/password fallback
func (c *AuthController) LocalLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := c.services.Users.Authenticate(r.Context(), email, password)
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid email or password."
		if !errors.Is(err, services.ErrInvalidCredentials) {
			c.log.WithError(err).Error("local login lookup failed")
			status = http.StatusInternalServerError
			message = "Login is temporarily unavailable."
		}

		c.audit(r, email, models.AuditLoginFailed, "local login rejected")
		metrics.RecordLogin("local", "rejected")
		c.renderLogin(w, status, c.settings(r), message, "", r.FormValue("redirect_to"))
		return
	}

	c.completeSignIn(w, r, user.ID, user.Email, models.AuditLocalLogin, "local", r.FormValue("redirect_to"))
}

// StartSSO handles GET /login/sso, an explicit click on the SSO button
func (c *AuthController) StartSSO(w http.ResponseWriter, r *http.Request) {
	c.startSSO(w, r, r.URL.Query().Get("redirect_to"))
}

func (c *AuthController) startSSO(w http.ResponseWriter, r *http.Request, redirectTo string) {
	sess := session.GetSession(r)
	outcome := c.auth.StartLogin(sessionState{sess}, redirectTo)

	if outcome.Kind == authenticator.OutcomeRedirect {
		http.Redirect(w, r, outcome.RedirectURL, http.StatusTemporaryRedirect)
		return
	}

	c.failLogin(w, r, outcome.Err)
}

// Callback handles GET /callback, the return leg from the identity provider
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	settings := c.settings(r)

	outcome := c.auth.HandleCallback(r.Context(), sessionState{sess}, r.URL.Query(),
		authenticator.Options{AutoProvision: settings.AutoProvision})

	if outcome.Kind != authenticator.OutcomeAuthenticated {
		c.failLogin(w, r, outcome.Err)
		return
	}

	c.completeSignIn(w, r, outcome.User.UserID, outcome.User.Email,
		models.AuditLoginSuccess, "sso", outcome.RedirectTo)
}

// Logout handles GET /logout
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	email, _ := sess.Get("user_email").(string)

	sess.Delete("user_id")
	sess.Delete("user_email")
	sess.Delete(authenticator.KeySignedIn)
	sess.Delete(authenticator.KeyLoginState)

	if email != "" {
		c.audit(r, email, models.AuditLogout, "signed out")
	}

	http.Redirect(w, r, "/login?loggedout=1", http.StatusSeeOther)
}

// completeSignIn binds the authenticated user to the session and sends
// the browser to the post-login target.
func (c *AuthController) completeSignIn(w http.ResponseWriter, r *http.Request, userID int, email, event, method, redirectTo string) {
	sess := session.GetSession(r)
	sess.Set("user_id", userID)
	sess.Set("user_email", email)

	if err := c.services.Users.RecordLogin(r.Context(), userID); err != nil {
		c.log.WithError(err).WithField("email", email).Warn("failed to stamp last login")
	}

	c.audit(r, email, event, method+" login")
	metrics.RecordLogin(method, "success")

	// Stored intent wins over the configured default
	if redirectTo == "" {
		redirectTo, _ = sess.Get("redirect_after_login").(string)
	}
	sess.Delete("redirect_after_login")

	settings := c.settings(r)
	target := authenticator.SafeRedirect(redirectTo,
		authenticator.SafeRedirect(settings.DefaultRedirect, "/"))

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// failLogin records the failed attempt and re-renders the login form
// with a user-facing message.
func (c *AuthController) failLogin(w http.ResponseWriter, r *http.Request, lerr *authenticator.LoginError) {
	c.audit(r, "", models.AuditLoginFailed, lerr.Error())
	metrics.RecordLogin("sso", string(lerr.Kind))

	message := lerr.Message()
	if lerr.Kind == authenticator.KindConfiguration {
		message += " The password form below still works."
	}

	c.renderLogin(w, statusForError(lerr.Kind), c.settings(r), message, "", "")
}

func (c *AuthController) renderLogin(w http.ResponseWriter, status int, settings models.Settings, errMsg, notice, redirectTo string) {
	data := loginPageData{
		Title:      "Sign in",
		ButtonText: settings.ButtonText,
		Error:      errMsg,
		Notice:     notice,
		RedirectTo: authenticator.SafeRedirect(redirectTo, ""),
	}
	renderTemplateWithStatus(w, status, "login", "templates/login.html", data)
}

// settings loads the display options, falling back to defaults so a
// storage hiccup never takes the login page down.
func (c *AuthController) settings(r *http.Request) models.Settings {
	settings, err := c.services.Settings.Get(r.Context())
	if err != nil {
		c.log.WithError(err).Warn("falling back to default settings")
		return models.DefaultSettings()
	}
	return settings
}

func (c *AuthController) audit(r *http.Request, email, event, detail string) {
	if email == "" {
		email = strings.TrimSpace(r.FormValue("email"))
	}
	if email == "" {
		email = "anonymous"
	}
	entry := &models.AuditLogEntry{
		UserEmail: email,
		Event:     event,
		Detail:    detail,
		UserAgent: r.UserAgent(),
		IPAddress: middleware.GetIPAddress(r),
	}
	if err := c.services.Audit.Record(r.Context(), entry); err != nil {
		c.log.WithError(err).Error("failed to record audit entry")
	}
}

func statusForError(kind authenticator.ErrorKind) int {
	switch kind {
	case authenticator.KindConfiguration:
		return http.StatusInternalServerError
	case authenticator.KindProtocol:
		return http.StatusBadRequest
	case authenticator.KindIdentityProvider:
		return http.StatusUnauthorized
	case authenticator.KindTransport:
		return http.StatusBadGateway
	case authenticator.KindUserNotFound:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

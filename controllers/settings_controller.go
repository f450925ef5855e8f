package controllers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mkoenig/ssoportal/config"
	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/services"
)

// SettingsController handles the SSO admin page
type SettingsController struct {
	services *services.Services
	cfg      *config.Config
	log      logrus.FieldLogger
}

// NewSettingsController creates a new settings controller
func NewSettingsController(services *services.Services, cfg *config.Config, log logrus.FieldLogger) *SettingsController {
	return &SettingsController{
		services: services,
		cfg:      cfg,
		log:      log,
	}
}

// settingsPageData feeds templates/settings.html. Credentials are shown
// read-only; the client secret is never rendered.
type settingsPageData struct {
	Title       string
	CurrentPage string
	Error       string
	Success     string
	Settings    models.Settings
	ClientID    string
	TenantID    string
	Configured  bool
	UserCount   int
	Users       []models.User
}

// Show handles GET /admin/settings
func (c *SettingsController) Show(w http.ResponseWriter, r *http.Request) {
	settings, err := c.services.Settings.Get(r.Context())
	if err != nil {
		http.Error(w, "Failed to load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	success := ""
	if r.URL.Query().Has("saved") {
		success = "Settings saved."
	}

	c.render(w, r, http.StatusOK, settings, "", success)
}

// Update handles POST /admin/settings
func (c *SettingsController) Update(w http.ResponseWriter, r *http.Request) {
	form := &models.SettingsForm{
		ButtonText:      r.FormValue("button_text"),
		AutoRedirect:    r.FormValue("auto_redirect") == "on",
		AutoProvision:   r.FormValue("auto_provision") == "on",
		DefaultRedirect: r.FormValue("default_redirect"),
	}

	settings, err := c.services.Settings.Update(r.Context(), form)
	if err != nil {
		c.log.WithError(err).Warn("settings update rejected")
		c.render(w, r, http.StatusBadRequest, models.Settings{
			ButtonText:      form.ButtonText,
			AutoRedirect:    form.AutoRedirect,
			AutoProvision:   form.AutoProvision,
			DefaultRedirect: form.DefaultRedirect,
		}, err.Error(), "")
		return
	}

	c.log.WithFields(logrus.Fields{
		"auto_redirect":  settings.AutoRedirect,
		"auto_provision": settings.AutoProvision,
	}).Info("SSO settings updated")

	http.Redirect(w, r, "/admin/settings?saved=1", http.StatusSeeOther)
}

func (c *SettingsController) render(w http.ResponseWriter, r *http.Request, status int, settings models.Settings, errMsg, success string) {
	count, err := c.services.Users.Count(r.Context())
	if err != nil {
		count = 0
	}

	users, err := c.services.Users.GetAll(r.Context())
	if err != nil {
		c.log.WithError(err).Warn("failed to load account list")
		users = nil
	}

	data := settingsPageData{
		Title:       "SSO Settings",
		CurrentPage: "settings",
		Error:       errMsg,
		Success:     success,
		Settings:    settings,
		ClientID:    c.cfg.ClientID,
		TenantID:    c.cfg.TenantID,
		Configured:  c.cfg.ClientID != "" && c.cfg.ClientSecret != "" && c.cfg.TenantID != "",
		UserCount:   count,
		Users:       users,
	}

	renderTemplateWithStatus(w, status, "settings", "templates/settings.html", data)
}

package controllers

import (
	"net/http"

	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/services"
	"github.com/mkoenig/ssoportal/userctx"
)

// DashboardController handles the signed-in landing page
type DashboardController struct {
	services *services.Services
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(services *services.Services) *DashboardController {
	return &DashboardController{
		services: services,
	}
}

// Index handles GET /
func (c *DashboardController) Index(w http.ResponseWriter, r *http.Request) {
	email := userctx.GetUserEmail(r.Context())

	user, err := c.services.Users.GetByEmail(r.Context(), email)
	if err != nil {
		http.Error(w, "Failed to load account: "+err.Error(), http.StatusInternalServerError)
		return
	}

	events, err := c.services.Audit.RecentEvents(r.Context(), 20)
	if err != nil {
		http.Error(w, "Failed to load activity: "+err.Error(), http.StatusInternalServerError)
		return
	}

	templateData := struct {
		Title       string
		CurrentPage string
		User        *models.User
		Events      []models.AuditLogEntry
	}{
		Title:       "Dashboard",
		CurrentPage: "dashboard",
		User:        user,
		Events:      events,
	}

	renderTemplate(w, "dashboard", "templates/dashboard.html", templateData)
}

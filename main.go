package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mkoenig/ssoportal/authenticator"
	"github.com/mkoenig/ssoportal/config"
	"github.com/mkoenig/ssoportal/controllers"
	"github.com/mkoenig/ssoportal/database"
	authmiddleware "github.com/mkoenig/ssoportal/middleware"
	"github.com/mkoenig/ssoportal/repositories"
	"github.com/mkoenig/ssoportal/services"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.CloseDB()

	repos := repositories.NewRepositories(database.GetDB())
	srvs := services.NewServices(repos)

	auth := authenticator.New(authenticator.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TenantID:     cfg.TenantID,
		Authority:    cfg.Authority,
		RedirectURL:  cfg.CallbackURL(),
	}, &userDirectory{users: srvs.Users}, log)

	if !auth.Configured() {
		log.Warn("SSO credentials incomplete; only the local login form will work")
	}

	ctrl := controllers.NewControllers(srvs, auth, cfg, log)

	r, err := setupRouter(ctrl, srvs, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to setup router")
	}

	log.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"base_url": cfg.BaseURL,
		"database": cfg.DatabasePath,
	}).Info("SSO portal starting")

	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, srvs *services.Services, cfg *config.Config, log logrus.FieldLogger) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second)) // generous bound for the token exchange leg
	r.Use(middleware.Compress(5))

	// Session middleware
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "ssoportal_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     3600,
		Maxlifetime:    3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/login", ctrl.Auth.LoginPage)
	r.Post("/login", ctrl.Auth.LocalLogin)
	r.Get("/login/sso", ctrl.Auth.StartSSO)
	r.Get("/callback", ctrl.Auth.Callback)
	r.Get("/logout", ctrl.Auth.Logout)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "ssoportal"}`)
	})

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAuth)

		r.Get("/", ctrl.Dashboard.Index)

		r.Route("/admin/settings", func(r chi.Router) {
			r.Use(authmiddleware.AuditLogger(srvs.Audit, log))
			r.Get("/", ctrl.Settings.Show)
			r.Post("/", ctrl.Settings.Update)
		})
	})

	return r, nil
}

// userDirectory adapts the user service to the identity resolution the
// login flow performs after the ID token checks out.
type userDirectory struct {
	users services.UserService
}

func (d *userDirectory) FindByEmail(ctx context.Context, email string) (*authenticator.Identity, error) {
	user, err := d.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, authenticator.ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}
	return &authenticator.Identity{UserID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func (d *userDirectory) Provision(ctx context.Context, email, name string) (*authenticator.Identity, error) {
	user, err := d.users.Provision(ctx, email, name)
	if err != nil {
		return nil, err
	}
	return &authenticator.Identity{UserID: user.ID, Email: user.Email, Name: user.Name}, nil
}

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoenig/ssoportal/config"
	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/services"
)

// stubSettingsService serves fixed settings
type stubSettingsService struct {
	settings models.Settings
}

func (s stubSettingsService) Get(ctx context.Context) (models.Settings, error) {
	return s.settings, nil
}

func (s stubSettingsService) Update(ctx context.Context, form *models.SettingsForm) (models.Settings, error) {
	return s.settings, nil
}

// stubUserService serves a fixed account list
type stubUserService struct {
	users []models.User
}

func (s stubUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return nil, services.ErrInvalidCredentials
}

func (s stubUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, services.ErrInvalidCredentials
}

func (s stubUserService) Provision(ctx context.Context, email, name string) (*models.User, error) {
	return nil, nil
}

func (s stubUserService) RecordLogin(ctx context.Context, id int) error {
	return nil
}

func (s stubUserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.users, nil
}

func (s stubUserService) Count(ctx context.Context) (int, error) {
	return len(s.users), nil
}

func TestSettingsShow_ListsRegisteredAccounts(t *testing.T) {
	// templates/ paths resolve from the repo root
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(".."))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	srvs := &services.Services{
		Settings: stubSettingsService{settings: models.DefaultSettings()},
		Users: stubUserService{users: []models.User{
			{ID: 1, Email: "alice@example.com", Name: "Alice", Active: true},
			{ID: 2, Email: "bob@example.com", Name: "Bob", Active: false},
		}},
	}
	cfg := &config.Config{ClientID: "client-123", ClientSecret: "secret", TenantID: "contoso"}
	c := NewSettingsController(srvs, cfg, logrus.New())

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	w := httptest.NewRecorder()

	c.Show(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "2 registered account(s)")
	assert.Contains(t, body, "alice@example.com")
	assert.Contains(t, body, "bob@example.com")
	assert.Contains(t, body, "inactive")
	assert.NotContains(t, body, "secret", "the client secret must never be rendered")
}

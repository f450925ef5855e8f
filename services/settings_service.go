package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/repositories"
)

// SettingsService interface defines settings business logic
type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, form *models.SettingsForm) (models.Settings, error)
}

// settingsService implements SettingsService interface
type settingsService struct {
	settingsRepo repositories.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repositories.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

// Get retrieves the current settings
func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

// Update validates and persists new settings
func (s *settingsService) Update(ctx context.Context, form *models.SettingsForm) (models.Settings, error) {
	if errors := form.Validate(); len(errors) > 0 {
		return models.Settings{}, fmt.Errorf("validation failed: %s", strings.Join(errors, ", "))
	}

	settings := models.Settings{
		ButtonText:      strings.TrimSpace(form.ButtonText),
		AutoRedirect:    form.AutoRedirect,
		AutoProvision:   form.AutoProvision,
		DefaultRedirect: strings.TrimSpace(form.DefaultRedirect),
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	return settings, nil
}

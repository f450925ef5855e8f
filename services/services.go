package services

import (
	"github.com/mkoenig/ssoportal/repositories"
)

// Services holds all service instances
type Services struct {
	Settings SettingsService
	Audit    AuditService
	Users    UserService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories) *Services {
	return &Services{
		Settings: NewSettingsService(repos.Settings),
		Audit:    NewAuditService(repos.Audit),
		Users:    NewUserService(repos.Users),
	}
}

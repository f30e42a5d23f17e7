package ports

import "go.trai.ch/polish/internal/core/domain"

// SettingsLoader defines the interface for loading workspace settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type SettingsLoader interface {
	// Load reads the settings for the workspace rooted at root.
	// Missing configuration yields domain.DefaultSettings.
	Load(root string) (domain.Settings, error)
}

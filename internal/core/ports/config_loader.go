package ports

import "go.trai.ch/press/internal/core/domain"

// ConfigLoader defines the interface for loading the site configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the site configuration. path is either a configuration file
	// or a directory searched upwards for press.yaml.
	Load(path string) (*domain.Site, error)
}

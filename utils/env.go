package utils

import "schedbot/config"

// IsProduction reports whether the service runs with a production
// configuration.
func IsProduction() bool {
	return config.IsProduction()
}

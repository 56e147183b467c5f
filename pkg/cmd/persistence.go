// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"fmt"
	"strings"

	"github.com/veridoc/veridoc/pkg/persistence"
	"github.com/veridoc/veridoc/pkg/persistence/file"
	"github.com/veridoc/veridoc/pkg/persistence/redis"
)

// NewPersistence selects a persistence provider by URL scheme. file:// paths
// (or bare paths) use the file provider; redis:// URLs use redis.
func NewPersistence(databaseURL string) persistence.Persistence {
	switch parseProvider(databaseURL) {
	case "redis":
		p, err := redis.NewPersistence(databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to initialize redis persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parseProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")
	if len(parts) < 2 {
		return "file"
	}

	return parts[0]
}

package capability

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DefaultCachePath returns the default location of the capabilities cache.
func DefaultCachePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "resilix", "capabilities.json"), nil
}

// Save writes the snapshot to a JSON cache file, creating parent
// directories as needed.
func Save(caps *Capabilities, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(caps, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal capabilities: %w", err)
	}

	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("failed to write capabilities cache: %w", err)
	}

	log.Debug().Str("path", path).Msg("saved capabilities cache")
	return nil
}

// Load reads a snapshot from the cache file. A missing or malformed file
// is not an error: it simply means there is no usable cache, and Load
// returns nil.
func Load(path string) *Capabilities {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", path).Msg("failed to read capabilities cache")
		}
		return nil
	}

	var caps Capabilities
	if err := json.Unmarshal(data, &caps); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring malformed capabilities cache")
		return nil
	}

	return &caps
}

// Package configfile reads and writes the per-project metadata file that
// lives in the .hopper directory. It records the database location and
// the import defaults so repeated imports into the same backlog behave
// consistently.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFileName = "metadata.json"

// HopperDirName is the project-local directory holding the database and
// metadata.
const HopperDirName = ".hopper"

type Config struct {
	Database string `json:"database"`

	// IDPrefix is prepended to generated work item IDs (e.g. "hop" for
	// hop-a1b2c3). Empty means the default prefix.
	IDPrefix string `json:"id_prefix,omitempty"`

	// CreateMissingParents controls whether imports synthesize Epic
	// placeholders for parent names that resolve to nothing. Nil means
	// the default (true).
	CreateMissingParents *bool `json:"create_missing_parents,omitempty"`

	// Sprint, when set, is assigned to every imported item unless the
	// import overrides it.
	Sprint string `json:"sprint,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Database: "hopper.db",
	}
}

func ConfigPath(hopperDir string) string {
	return filepath.Join(hopperDir, ConfigFileName)
}

// Load reads the metadata file from hopperDir. A missing file is not an
// error; it returns (nil, nil) so callers can fall back to defaults.
func Load(hopperDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(hopperDir)) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Save(hopperDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(hopperDir), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func (c *Config) DatabasePath(hopperDir string) string {
	if c.Database == "" {
		return filepath.Join(hopperDir, "hopper.db")
	}
	return filepath.Join(hopperDir, c.Database)
}

// GetCreateMissingParents returns the configured flag, defaulting to true.
func (c *Config) GetCreateMissingParents() bool {
	if c.CreateMissingParents == nil {
		return true
	}
	return *c.CreateMissingParents
}

// FindHopperDir walks up from startDir looking for a .hopper directory.
// Returns the directory path, or empty string if none exists up to the
// filesystem root.
func FindHopperDir(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, HopperDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
